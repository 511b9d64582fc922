package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trafikinfo-se/trafikinfo/pkg/api/routes"
	"github.com/trafikinfo-se/trafikinfo/pkg/poller"
)

func SetupServer(listen string, states *poller.StateStore) {
	webApp := fiber.New()

	webApp.Get("version", routes.APIVersion)

	sensorsGroup := webApp.Group("/sensors")
	routes.SensorsRouter(sensorsGroup, states)

	incidentsGroup := webApp.Group("/incidents")
	routes.IncidentsRouter(incidentsGroup)

	webApp.Listen(listen)
}
