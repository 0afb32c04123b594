package transit

type Line struct {
	LineID string
	Code   string
	Name   string
	Mode   TransportMode
	Active bool
}

// ItineraryStop is one entry of a line itinerary. AverageSegmentSeconds is the
// expected travel time from the previous entry, the first entry holds a placeholder.
type ItineraryStop struct {
	StopID                string `json:"stop_id" bson:"stop_id"`
	Sequence              int    `json:"seq" bson:"seq"`
	AverageSegmentSeconds int    `json:"avgStopSec" bson:"avgStopSec"`
}

type Schedule struct {
	DayOfWeek      int    `json:"dow" bson:"dow" groups:"detailed"`
	StartTime      string `json:"start" bson:"start" groups:"detailed"`
	EndTime        string `json:"end" bson:"end" groups:"detailed"`
	HeadwayMinutes int    `json:"headway_minutes" bson:"headway_minutes" groups:"detailed"`
}

// LineDocument is the document store view of a line, keyed either by _id or line_id
type LineDocument struct {
	ID     string        `bson:"_id"`
	LineID string        `bson:"line_id,omitempty"`
	Code   string        `bson:"code,omitempty"`
	Name   string        `bson:"name,omitempty"`
	Mode   TransportMode `bson:"mode,omitempty"`

	Itinerary []ItineraryStop `bson:"itinerary,omitempty"`
	Alerts    []ServiceAlert  `bson:"alerts,omitempty"`
	Schedules []Schedule      `bson:"schedules,omitempty"`
}

func (d *LineDocument) Identifier() string {
	if d.LineID != "" {
		return d.LineID
	}

	return d.ID
}
