package database

import (
	"context"
	"time"

	"github.com/trafikinfo-se/trafikinfo/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var Instance *MongoInstance

const defaultConnectionString = "mongodb://localhost:27017/"
const defaultDatabase = "trafikinfo"

func Connect() error {
	connectionString := defaultConnectionString
	dbName := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["TRAFIKINFO_MONGODB_CONNECTION"] != "" {
		connectionString = env["TRAFIKINFO_MONGODB_CONNECTION"]
	}

	if env["TRAFIKINFO_MONGODB_DATABASE"] != "" {
		dbName = env["TRAFIKINFO_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	Instance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	err = client.Ping(context.Background(), nil)
	if err != nil {
		return err
	}

	createIndexes()

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return Instance.Database.Collection(collectionName)
}
