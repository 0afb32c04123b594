package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/travigo/urbantransit/pkg/transit"
)

// Querier is satisfied by *pgxpool.Pool and *pgx.Conn
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads lines, stops and driver assignments from the relational database
type Store struct {
	DB Querier
}

func NewStore(db Querier) *Store {
	return &Store{DB: db}
}

const linesQuery = `
	SELECT line_id, COALESCE(code, ''), COALESCE(name, ''), COALESCE(line_mode, ''), active
	FROM lines
	WHERE line_id = ANY($1)`

const stopsQuery = `
	SELECT stop_id, COALESCE(code, ''), COALESCE(name, ''), lat, lon
	FROM stops
	WHERE stop_id = ANY($1)`

func (s *Store) GetLines(ctx context.Context, ids []string) (map[string]*transit.Line, error) {
	lines := map[string]*transit.Line{}
	if len(ids) == 0 {
		return lines, nil
	}

	rows, err := s.DB.Query(ctx, linesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("querying lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line transit.Line
		var mode string

		if err := rows.Scan(&line.LineID, &line.Code, &line.Name, &mode, &line.Active); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		line.Mode = transit.ParseTransportMode(mode)

		lines[line.LineID] = &line
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}

	return lines, nil
}

func (s *Store) GetStops(ctx context.Context, ids []string) (map[string]*transit.Stop, error) {
	stops := map[string]*transit.Stop{}
	if len(ids) == 0 {
		return stops, nil
	}

	rows, err := s.DB.Query(ctx, stopsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop transit.Stop

		if err := rows.Scan(&stop.StopID, &stop.Code, &stop.Name, &stop.Latitude, &stop.Longitude); err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}

		stops[stop.StopID] = &stop
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}

	return stops, nil
}
