package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/day-booking/internal/config"
)

// OpenMongo connects to MongoDB, pings the server and returns the client
// together with the configured database.
func OpenMongo(ctx context.Context, c config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(c.URI)
	if c.User != "" && c.Password != "" {
		opts.SetAuth(options.Credential{
			Username: c.User,
			Password: c.Password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(c.Database), nil
}
