package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trafikinfo-se/trafikinfo/pkg/poller"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"golang.org/x/exp/slices"
)

func SensorsRouter(router fiber.Router, states *poller.StateStore) {
	router.Get("/", listSensors(states))
	router.Get("/:category", getSensor(states))
}

func listSensors(states *poller.StateStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		instance := c.Query("instance", "default")

		sensors := map[string]*poller.SensorState{}
		for _, messageType := range traffic.AllMessageTypes {
			state, err := states.Get(c.Context(), instance, messageType)
			if err != nil {
				continue
			}

			sensors[messageType.Slug()] = state
		}

		return c.JSON(sensors)
	}
}

func getSensor(states *poller.StateStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		instance := c.Query("instance", "default")
		category := c.Params("category")

		index := slices.IndexFunc(traffic.AllMessageTypes, func(knownType traffic.MessageType) bool {
			return knownType.Slug() == category
		})
		if index < 0 {
			c.SendStatus(404)
			return c.JSON(fiber.Map{
				"error": "unknown category",
			})
		}
		messageType := traffic.AllMessageTypes[index]

		state, err := states.Get(c.Context(), instance, messageType)
		if err != nil {
			c.SendStatus(404)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(state)
	}
}
