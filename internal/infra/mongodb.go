package infra

import (
	"context"
	"fmt"

	"github.com/umalmyha/contacts-api/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongodb builds mongo client, connection is established lazily by the driver
func Mongodb(ctx context.Context, cfg config.MongoCfg) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build mongodb client - %w", err)
	}
	return client, nil
}

// PingMongodb checks primary is reachable within connect timeout
func PingMongodb(ctx context.Context, client *mongo.Client, cfg config.MongoCfg) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("didn't get response from mongodb after sending ping request - %w", err)
	}
	return nil
}
