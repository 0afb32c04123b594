package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	LinesCollection    = "lines"
	VehiclesCollection = "vehicles"
)

func createIndexes() {
	createLinesIndexes()
	createVehiclesIndexes()
}

func createLinesIndexes() {
	linesCollection := GetCollection(LinesCollection)
	_, err := linesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "line_id", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createVehiclesIndexes() {
	vehiclesCollection := GetCollection(VehiclesCollection)
	_, err := vehiclesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "line", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastKnown.loc", Value: "2dsphere"}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
