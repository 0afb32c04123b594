package routes

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/metrics"
	"github.com/travigo/urbantransit/pkg/transit"
	"google.golang.org/protobuf/proto"
)

type PositionComputer interface {
	ComputePositions(ctx context.Context, lineID string, now time.Time) (*transit.LivePositions, error)
}

type liveHandler struct {
	positions PositionComputer
	metrics   *metrics.Collector
	now       func() time.Time
}

func LiveRouter(router fiber.Router, positions PositionComputer, collector *metrics.Collector) {
	handler := &liveHandler{
		positions: positions,
		metrics:   collector,
		now:       time.Now,
	}

	router.Get("/:line", handler.getLivePositions)
	router.Get("/:line/gtfsrt", handler.getLiveFeed)
}

func (h *liveHandler) compute(c *fiber.Ctx) (*transit.LivePositions, int, error) {
	lineID := c.Params("line")

	positions, err := h.positions.ComputePositions(c.UserContext(), lineID, h.now())

	outcome := "ok"
	status := fiber.StatusOK
	switch {
	case errors.Is(err, transit.ErrNotFound):
		outcome = "not_found"
		status = fiber.StatusNotFound
	case err != nil:
		outcome = "error"
		status = fiber.StatusInternalServerError
		log.Error().Err(err).Str("line", lineID).Msg("Failed to compute live positions")
	case len(positions.ActiveAssignments) == 0:
		outcome = "no_assignments"
	}

	if h.metrics != nil {
		h.metrics.LiveRequests.WithLabelValues(outcome).Inc()
	}

	return positions, status, err
}

func (h *liveHandler) getLivePositions(c *fiber.Ctx) error {
	positions, status, err := h.compute(c)
	if err != nil {
		c.SendStatus(status)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(positions)
}

func (h *liveHandler) getLiveFeed(c *fiber.Ctx) error {
	positions, status, err := h.compute(c)
	if err != nil {
		c.SendStatus(status)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	feedBytes, err := proto.Marshal(NewFeedMessage(positions))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "could not encode feed",
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-protobuf")
	return c.Send(feedBytes)
}
