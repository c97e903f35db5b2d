package providers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rently/internal/structures"
)

func NewMongoProvider(conf *structures.Config, logger Logger) (*mongo.Client, error) {
	timeout := conf.Mongo.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Infof(TypeApp, "Connected to MongoDB database %q", conf.Mongo.Database)
	return client, nil
}

func NewDatabaseProvider(client *mongo.Client, conf *structures.Config) *mongo.Database {
	return client.Database(conf.Mongo.Database)
}
