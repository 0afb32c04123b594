package transit

import "time"

type ServiceAlert struct {
	Message string `json:"msg" bson:"msg" groups:"basic,detailed"`
	Level   string `json:"level" bson:"level,omitempty" groups:"basic,detailed"`

	ValidFrom  *time.Time `json:"from" bson:"from,omitempty" groups:"detailed"`
	ValidUntil *time.Time `json:"to" bson:"to,omitempty" groups:"detailed"`

	Active bool `json:"active" bson:"-" groups:"basic,detailed"`
}

// IsValid reports whether the alert window covers checkTime. An alert without
// a start is never valid, an alert without an end stays valid once started.
func (a *ServiceAlert) IsValid(checkTime time.Time) bool {
	if a.ValidFrom == nil {
		return false
	}

	checkTime = checkTime.UTC()

	if a.ValidFrom.UTC().After(checkTime) {
		return false
	}

	return a.ValidUntil == nil || a.ValidUntil.UTC().After(checkTime)
}
