package routes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/elastic_client"
	"github.com/travigo/urbantransit/pkg/metrics"
	"github.com/travigo/urbantransit/pkg/transit"
)

type RouteFinder interface {
	FindRoute(ctx context.Context, originStopID string, destinationStopID string, units transit.UnitPreference) (*transit.RouteResult, error)
}

type routeHandler struct {
	finder  RouteFinder
	metrics *metrics.Collector
}

func RouteRouter(router fiber.Router, finder RouteFinder, collector *metrics.Collector) {
	handler := &routeHandler{
		finder:  finder,
		metrics: collector,
	}

	router.Get("/", handler.getRoute)
}

func (h *routeHandler) getRoute(c *fiber.Ctx) error {
	startTime := time.Now()

	originStopID := c.Query("origin_stop_id")
	destinationStopID := c.Query("dest_stop_id")

	if originStopID == "" || destinationStopID == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "origin_stop_id and dest_stop_id are required",
		})
	}

	units := parseUnits(c.Query("units"))

	route, err := h.finder.FindRoute(c.UserContext(), originStopID, destinationStopID, units)

	h.record(originStopID, destinationStopID, units, route, err, time.Since(startTime))

	if errors.Is(err, transit.ErrNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	} else if err != nil {
		log.Error().Err(err).Str("origin", originStopID).Str("destination", destinationStopID).Msg("Failed to compose route")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	group := "basic"
	if c.QueryBool("detail") {
		group = "detailed"
	}

	routeReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{group},
	}, route)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce route",
		})
	}

	return c.JSON(routeReduced)
}

func (h *routeHandler) record(originStopID string, destinationStopID string, units transit.UnitPreference, route *transit.RouteResult, err error, duration time.Duration) {
	outcome := "found"
	if errors.Is(err, transit.ErrNotFound) {
		outcome = "not_found"
	} else if err != nil {
		outcome = "error"
	}

	if h.metrics != nil {
		h.metrics.RouteRequests.WithLabelValues(outcome).Inc()
		h.metrics.RouteDuration.Observe(duration.Seconds())
	}

	event := elastic_client.RouteRequestEvent{
		Timestamp:         time.Now(),
		OriginStopID:      originStopID,
		DestinationStopID: destinationStopID,
		Units:             string(units),
		Found:             route != nil,
		DurationMillis:    duration.Milliseconds(),
	}
	if route != nil {
		event.Hops = route.TotalHops
		event.LinesUsed = route.LinesUsed
		event.TotalTravelSeconds = route.TotalTravelSeconds
	}

	elastic_client.IndexRouteRequest(event)
}

// parseUnits treats anything other than imperial as metric
func parseUnits(value string) transit.UnitPreference {
	if transit.UnitPreference(strings.ToLower(value)) == transit.UnitPreferenceImperial {
		return transit.UnitPreferenceImperial
	}

	return transit.UnitPreferenceMetric
}
