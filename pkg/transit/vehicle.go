package transit

import "time"

const (
	VehicleStatusActive   = "active"
	VehicleStatusInactive = "inactive"
)

// SimulationState is the persisted checkpoint driving the position simulator
type SimulationState struct {
	Index        int       `bson:"idx"`
	SegmentStart time.Time `bson:"segment_start_ts,omitempty"`
	Reverse      bool      `bson:"reverse,omitempty"`
	Version      int64     `bson:"version,omitempty"`
}

type LastKnown struct {
	Timestamp time.Time `json:"ts" bson:"ts"`
	Location  *Location `json:"loc" bson:"loc"`
}

type Vehicle struct {
	VehicleID string `bson:"_id"`
	Plate     string `bson:"plate"`
	Model     string `bson:"model"`
	Capacity  int    `bson:"capacity"`
	LineID    string `bson:"line"`

	Sim       *SimulationState `bson:"sim,omitempty"`
	LastKnown *LastKnown       `bson:"lastKnown,omitempty"`
}

type Assignment struct {
	AssignmentID string `json:"assignment_id"`
	DriverID     string `json:"driver_id"`
}

type VehicleSnapshot struct {
	VehicleID string `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Model     string `json:"model"`
	Capacity  int    `json:"capacity"`
	LineID    string `json:"line_id"`

	LastKnown *LastKnown `json:"lastKnown"`

	DepartedStop *Stop `json:"departed_stop"`
	NextStop     *Stop `json:"next_stop"`

	Location *Location `json:"location"`
	Progress float64   `json:"progress"`

	ETAToNextStopSeconds int `json:"eta_to_next_stop_s"`
	ETAToNextStopMinutes int `json:"eta_to_next_stop_min"`

	Status       string `json:"status"`
	AssignmentID string `json:"assignment_id,omitempty"`
	DriverID     string `json:"driver_id,omitempty"`
}

type LivePositions struct {
	LineID            string                `json:"line_id"`
	Timestamp         time.Time             `json:"ts"`
	ActiveAssignments map[string]Assignment `json:"active_assignments"`
	Vehicles          []*VehicleSnapshot    `json:"vehicles"`
	Note              string                `json:"note,omitempty"`
}
