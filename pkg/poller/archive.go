package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/database"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchivedIncident is the incident history document kept in mongo. Each
// incident is upserted on every poll it appears in, so the archive holds the
// latest known content and when it was last observed.
type ArchivedIncident struct {
	traffic.Incident `bson:",inline"`

	Instance string
	LastSeen time.Time
}

func buildArchiveModels(incidents []traffic.Incident, instance string, now time.Time) []mongo.WriteModel {
	var models []mongo.WriteModel

	for _, incident := range incidents {
		archived := ArchivedIncident{
			Incident: incident,
			Instance: instance,
			LastSeen: now,
		}

		bsonRep, _ := bson.Marshal(bson.M{"$set": archived})
		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"incidentkey": incident.IncidentKey})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		models = append(models, updateModel)
	}

	return models
}

func writeArchive(models []mongo.WriteModel) {
	if len(models) == 0 {
		return
	}

	incidentsCollection := database.GetCollection("incidents")

	_, err := incidentsCollection.BulkWrite(context.Background(), models, &options.BulkWriteOptions{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to bulk write incidents archive")
	}
}
