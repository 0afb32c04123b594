package topology

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/transit"
)

type edgeRecord struct {
	FromStopID           string `csv:"from_stop_id"`
	ToStopID             string `csv:"to_stop_id"`
	Type                 string `csv:"type"`
	LineID               string `csv:"line_id"`
	AverageTravelSeconds int    `csv:"avg_travel_s"`
	WalkSeconds          int    `csv:"walk_s"`
}

type stopRecord struct {
	StopID    string `csv:"stop_id"`
	Code      string `csv:"code"`
	Name      string `csv:"name"`
	Latitude  string `csv:"lat"`
	Longitude string `csv:"lon"`
}

func newCSVReader(in io.Reader) gocsv.CSVReader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r
}

// LoadEdgesCSV reads an edge list with the columns
// from_stop_id,to_stop_id,type,line_id,avg_travel_s,walk_s.
// A type of NEXT is read as RIDE.
func (g *Graph) LoadEdgesCSV(reader io.Reader) error {
	var records []edgeRecord
	if err := gocsv.UnmarshalCSV(newCSVReader(reader), &records); err != nil {
		return fmt.Errorf("parsing edges csv: %w", err)
	}

	for i, record := range records {
		switch strings.ToUpper(strings.TrimSpace(record.Type)) {
		case string(transit.EdgeTypeRide), "NEXT":
			g.AddRide(record.FromStopID, record.ToStopID, record.LineID, record.AverageTravelSeconds)
		case string(transit.EdgeTypeTransfer):
			g.AddTransfer(record.FromStopID, record.ToStopID, record.WalkSeconds)
		default:
			return fmt.Errorf("edges csv row %d: unknown edge type %q", i+1, record.Type)
		}
	}

	log.Debug().Int("edges", len(records)).Msg("Loaded topology edges")

	return nil
}

// LoadStopsCSV reads stop_id,code,name,lat,lon rows. Blank coordinates are left unset.
func (g *Graph) LoadStopsCSV(reader io.Reader) error {
	var records []stopRecord
	if err := gocsv.UnmarshalCSV(newCSVReader(reader), &records); err != nil {
		return fmt.Errorf("parsing stops csv: %w", err)
	}

	for _, record := range records {
		stop := transit.Stop{
			StopID: record.StopID,
			Code:   record.Code,
			Name:   record.Name,
		}

		latitude, latErr := parseCoordinate(record.Latitude)
		longitude, lonErr := parseCoordinate(record.Longitude)
		if latErr != nil || lonErr != nil {
			log.Warn().Str("stop", record.StopID).Msg("Ignoring invalid stop coordinates")
		} else {
			stop.Latitude = latitude
			stop.Longitude = longitude
		}

		g.AddStop(stop)
	}

	log.Debug().Int("stops", len(records)).Msg("Loaded topology stops")

	return nil
}

func parseCoordinate(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
