package transit

import "github.com/travigo/urbantransit/pkg/geo"

type Stop struct {
	StopID string `json:"stop_id" groups:"basic,detailed"`
	Code   string `json:"code" groups:"basic,detailed"`
	Name   string `json:"name" groups:"basic,detailed"`

	Latitude  *float64 `json:"lat" groups:"detailed"`
	Longitude *float64 `json:"lon" groups:"detailed"`
}

func (s *Stop) Coordinate() *geo.Coordinate {
	if s == nil || s.Latitude == nil || s.Longitude == nil {
		return nil
	}

	return &geo.Coordinate{
		Latitude:  *s.Latitude,
		Longitude: *s.Longitude,
	}
}
