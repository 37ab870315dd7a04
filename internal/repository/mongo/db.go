package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB connects to MongoDB and pings the primary.
// The returned client is shared by every repository through client.Database.
func ConnectDB(uri string) (*mongo.Client, error) {
	// Bound the whole connection attempt
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel() // released even when Connect fails

	// Client options come straight from the URI (auth, replica set, TLS)
	clientOptions := options.Client().ApplyURI(uri)

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Connecting is lazy; the ping proves the server answers.
	// It gets its own, shorter deadline so a hung server fails fast.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		// Drop the half-open client before reporting the ping failure
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx) // the ping error is the one worth returning
		return nil, err
	}

	// Connection verified
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection used by the app.
// Creating an index that already exists is a no-op, so it runs on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		collection string
		ensure     func(context.Context, *mongo.Collection) error
	}{
		{athleteCollectionName, EnsureAthleteIndexes},
		{sessionCollectionName, EnsureSessionIndexes},
		{replaceRunCollectionName, EnsureReplaceRunIndexes},
	}
	// One collection at a time; the first failure stops the rest
	for _, step := range steps {
		if err := step.ensure(ctx, db.Collection(step.collection)); err != nil {
			return fmt.Errorf("indexes for %s: %w", step.collection, err)
		}
	}
	return nil
}
