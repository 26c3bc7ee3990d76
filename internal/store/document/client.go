package document

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ClientConfig struct {
	URI        string
	Database   string
	Collection string
}

// Connect creates a driver client and checks it can reach the server. The
// caller owns the returned client and must Disconnect it.
func Connect(ctx context.Context, cfg ClientConfig) (*mongo.Client, *mongo.Collection, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, nil, fmt.Errorf("mongo database and collection are required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}
