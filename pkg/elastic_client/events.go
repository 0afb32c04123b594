package elastic_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type RouteRequestEvent struct {
	Timestamp time.Time

	OriginStopID      string
	DestinationStopID string
	Units             string

	Found     bool
	Hops      int
	LinesUsed []string

	TotalTravelSeconds int
	DurationMillis     int64
}

func RouteRequestIndexName(t time.Time) string {
	yearNumber, weekNumber := t.ISOWeek()
	return fmt.Sprintf("%s-route-requests-%d-%d", indexPrefix, yearNumber, weekNumber)
}

func IndexRouteRequest(event RouteRequestEvent) {
	if Client == nil {
		return
	}

	eventJSON, _ := json.Marshal(event)

	IndexRequest(RouteRequestIndexName(event.Timestamp), bytes.NewReader(eventJSON))
}
