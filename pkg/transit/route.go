package transit

type UnitPreference string

const (
	UnitPreferenceMetric   UnitPreference = "metric"
	UnitPreferenceImperial UnitPreference = "imperial"
)

const (
	DistanceUnitKilometres = "km"
	DistanceUnitMiles      = "mi"
)

type RouteResult struct {
	OriginStopID      string `json:"origin_stop_id" groups:"basic,detailed"`
	DestinationStopID string `json:"dest_stop_id" groups:"basic,detailed"`

	TotalHops          int     `json:"total_hops" groups:"basic,detailed"`
	TotalTravelSeconds int     `json:"total_travel_s" groups:"basic,detailed"`
	TotalDistance      float64 `json:"total_distance" groups:"basic,detailed"`
	DistanceUnit       string  `json:"distance_unit" groups:"basic,detailed"`

	Segments      []Segment      `json:"segments" groups:"basic,detailed"`
	LinesUsed     []string       `json:"lines_used" groups:"basic,detailed"`
	LinesEnriched []EnrichedLine `json:"lines_enriched" groups:"detailed"`
}

type Segment struct {
	RelType EdgeType `json:"rel_type" groups:"basic,detailed"`
	LineID  string   `json:"line_id" groups:"basic,detailed"`

	FromStop Stop `json:"from_stop" groups:"basic,detailed"`
	ToStop   Stop `json:"to_stop" groups:"basic,detailed"`

	AverageTravelSeconds int     `json:"avg_travel_s" groups:"detailed"`
	WalkSeconds          int     `json:"walk_s" groups:"detailed"`
	CostSeconds          int     `json:"cost_s" groups:"basic,detailed"`
	DistanceKm           float64 `json:"dist_km" groups:"detailed"`
}

type EnrichedLine struct {
	LineID string        `json:"line_id" groups:"basic,detailed"`
	Code   string        `json:"code" groups:"basic,detailed"`
	Name   string        `json:"name" groups:"basic,detailed"`
	Mode   TransportMode `json:"mode" groups:"basic,detailed"`

	FromReference bool `json:"from_reference" groups:"detailed"`
	FromDocument  bool `json:"from_document" groups:"detailed"`

	Alerts    []ServiceAlert `json:"alerts" groups:"basic,detailed"`
	Schedules []Schedule     `json:"schedules" groups:"detailed"`
}
