package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger writes one structured line per request. Scrapes of the metrics
// endpoint are only logged at debug level.
func NewLogger(logger *zerolog.Logger) fiber.Handler {
	if logger == nil {
		logger = &log.Logger
	}

	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		err := c.Next()

		msg := "HTTP Request"
		if err != nil {
			msg = err.Error()
			// Let the app error handler set the status before it is logged
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		code := c.Response().StatusCode()

		ipAddress := c.IP()
		if cloudflareConnectingIP := c.Get("CF-Connecting-IP", ""); cloudflareConnectingIP != "" {
			ipAddress = cloudflareConnectingIP
		}

		var event *zerolog.Event
		switch {
		case code >= fiber.StatusInternalServerError:
			event = logger.Error()
		case code >= fiber.StatusBadRequest:
			event = logger.Warn()
		case c.Path() == "/metrics":
			event = logger.Debug()
		default:
			event = logger.Info()
		}

		event.
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("query", string(c.Request().URI().QueryString())).
			Str("ip", ipAddress).
			Dur("latency", time.Since(startTime)).
			Str("user-agent", c.Get(fiber.HeaderUserAgent)).
			Msg(msg)

		return nil
	}
}
