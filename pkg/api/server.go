package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/travigo/urbantransit/pkg/api/routes"
	"github.com/travigo/urbantransit/pkg/metrics"
)

func NewApp(finder routes.RouteFinder, positions routes.PositionComputer, collector *metrics.Collector) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger(nil))

	if collector != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.RouteRouter(group.Group("/route"), finder, collector)
	routes.LiveRouter(group.Group("/live"), positions, collector)

	return webApp
}

func SetupServer(listen string, services *Services) error {
	webApp := NewApp(services.Composer, services.Simulator, services.Metrics)

	return webApp.Listen(listen)
}
