package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/topology"
	"github.com/travigo/urbantransit/pkg/transit"
)

const importBatchSize = 500

const importStopsQuery = `
	UNWIND $rows AS row
	MERGE (s:Stop {stop_id: row.stop_id})
	SET s.code = row.code, s.name = row.name, s.lat = row.lat, s.lon = row.lon`

const importRidesQuery = `
	UNWIND $rows AS row
	MATCH (a:Stop {stop_id: row.from}), (b:Stop {stop_id: row.to})
	MERGE (a)-[r:NEXT {line_id: row.line_id}]->(b)
	SET r.avg_travel_s = row.avg_travel_s`

const importTransfersQuery = `
	UNWIND $rows AS row
	MATCH (a:Stop {stop_id: row.from}), (b:Stop {stop_id: row.to})
	MERGE (a)-[r:TRANSFER]->(b)
	SET r.walk_s = row.walk_s`

const stopIndexQuery = `CREATE INDEX stop_id IF NOT EXISTS FOR (s:Stop) ON (s.stop_id)`

// Import merges the stops and edges into the graph database so they can be
// queried by ShortestPaths. Existing stops and relationships are updated in place.
func (t *Topology) Import(ctx context.Context, stops []transit.Stop, edges []topology.Edge) error {
	session := t.Connection.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: t.Connection.Database})
	defer session.Close(ctx)

	indexResult, err := session.Run(ctx, stopIndexQuery, nil)
	if err == nil {
		_, err = indexResult.Consume(ctx)
	}
	if err != nil {
		return fmt.Errorf("creating stop index: %w", err)
	}

	stopRows, rideRows, transferRows := importRows(stops, edges)

	for _, batch := range []struct {
		name  string
		query string
		rows  []map[string]any
	}{
		{"stops", importStopsQuery, stopRows},
		{"rides", importRidesQuery, rideRows},
		{"transfers", importTransfersQuery, transferRows},
	} {
		for start := 0; start < len(batch.rows); start += importBatchSize {
			rows := batch.rows[start:min(start+importBatchSize, len(batch.rows))]

			_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				result, err := tx.Run(ctx, batch.query, map[string]any{"rows": rows})
				if err != nil {
					return nil, err
				}
				return result.Consume(ctx)
			})
			if err != nil {
				return fmt.Errorf("importing %s: %w", batch.name, err)
			}
		}

		log.Info().Str("type", batch.name).Int("count", len(batch.rows)).Msg("Imported topology")
	}

	return nil
}

func importRows(stops []transit.Stop, edges []topology.Edge) (stopRows []map[string]any, rideRows []map[string]any, transferRows []map[string]any) {
	stopRows = make([]map[string]any, 0, len(stops))
	for _, stop := range stops {
		row := map[string]any{
			"stop_id": stop.StopID,
			"code":    stop.Code,
			"name":    stop.Name,
			"lat":     nil,
			"lon":     nil,
		}
		if coordinate := stop.Coordinate(); coordinate != nil {
			row["lat"] = coordinate.Latitude
			row["lon"] = coordinate.Longitude
		}

		stopRows = append(stopRows, row)
	}

	rideRows = []map[string]any{}
	transferRows = []map[string]any{}
	for _, edge := range edges {
		switch edge.Type {
		case transit.EdgeTypeRide:
			rideRows = append(rideRows, map[string]any{
				"from":         edge.FromStopID,
				"to":           edge.ToStopID,
				"line_id":      edge.LineID,
				"avg_travel_s": edge.AverageTravelSeconds,
			})
		case transit.EdgeTypeTransfer:
			transferRows = append(transferRows, map[string]any{
				"from":   edge.FromStopID,
				"to":     edge.ToStopID,
				"walk_s": edge.WalkSeconds,
			})
		}
	}

	return stopRows, rideRows, transferRows
}
