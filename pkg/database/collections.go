package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	incidentsIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "incidentkey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "messagetype", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastseen", Value: -1}},
		},
	}

	_, err := GetCollection("incidents").Indexes().CreateMany(context.Background(), incidentsIndexes)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create indexes on incidents")
	}
}
