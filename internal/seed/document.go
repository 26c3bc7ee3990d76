package seed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ClientCollection is the part of a mongo collection the seeder writes through.
type ClientCollection interface {
	DeleteMany(ctx context.Context, filter any) (int64, error)
	InsertMany(ctx context.Context, documents []any) (int, error)
}

type mongoClients struct {
	coll *mongo.Collection
}

// MongoClients adapts a driver collection to ClientCollection.
func MongoClients(coll *mongo.Collection) ClientCollection {
	return mongoClients{coll: coll}
}

func (m mongoClients) DeleteMany(ctx context.Context, filter any) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m mongoClients) InsertMany(ctx context.Context, documents []any) (int, error) {
	res, err := m.coll.InsertMany(ctx, documents)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Document replaces every client profile with the fixture.
func Document(ctx context.Context, coll ClientCollection) (int, error) {
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, fmt.Errorf("clear clients: %w", err)
	}
	clients := Clients()
	documents := make([]any, 0, len(clients))
	for _, client := range clients {
		documents = append(documents, client)
	}
	inserted, err := coll.InsertMany(ctx, documents)
	if err != nil {
		return 0, fmt.Errorf("insert clients: %w", err)
	}
	return inserted, nil
}
