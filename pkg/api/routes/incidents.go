package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/trafikinfo-se/trafikinfo/pkg/database"
	"github.com/trafikinfo-se/trafikinfo/pkg/poller"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func IncidentsRouter(router fiber.Router) {
	router.Get("/", listIncidents)
	router.Get("/:key", getIncident)
}

func listIncidents(c *fiber.Ctx) error {
	incidentsCollection := database.GetCollection("incidents")

	query := bson.M{}
	if messageType := c.Query("messagetype"); messageType != "" {
		query["messagetype"] = messageType
	}

	limit := int64(c.QueryInt("limit", 50))
	if limit > 500 {
		limit = 500
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "lastseen", Value: -1}}).
		SetLimit(limit)

	cursor, err := incidentsCollection.Find(context.Background(), query, opts)
	if err != nil {
		c.SendStatus(500)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var incidents []poller.ArchivedIncident
	if err := cursor.All(context.Background(), &incidents); err != nil {
		c.SendStatus(500)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(incidents)
}

func getIncident(c *fiber.Ctx) error {
	incidentsCollection := database.GetCollection("incidents")

	var incident *poller.ArchivedIncident
	incidentsCollection.FindOne(context.Background(), bson.M{"incidentkey": c.Params("key")}).Decode(&incident)

	if incident == nil {
		c.SendStatus(404)
		return c.JSON(fiber.Map{
			"error": "incident not found",
		})
	}

	return c.JSON(incident)
}
