package transit

import "github.com/travigo/urbantransit/pkg/geo"

// Location is a GeoJSON point, coordinates are ordered [longitude, latitude]
type Location struct {
	Type        string    `json:"type" groups:"basic,detailed"`
	Coordinates []float64 `json:"coordinates" groups:"basic,detailed"`
}

func NewPointLocation(c geo.Coordinate) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{c.Longitude, c.Latitude},
	}
}

func (l *Location) Coordinate() *geo.Coordinate {
	if l == nil || len(l.Coordinates) != 2 {
		return nil
	}

	return &geo.Coordinate{
		Longitude: l.Coordinates[0],
		Latitude:  l.Coordinates[1],
	}
}
