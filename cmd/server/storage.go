package main

import (
	"context"
	"fmt"

	"github.com/iliyamo/day-booking/internal/config"
	"github.com/iliyamo/day-booking/internal/database"
	"github.com/iliyamo/day-booking/internal/storage"
)

// openBackend connects the medium selected by STORE_DRIVER.  The returned
// func releases its connections.
func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return storage.NewMemoryBackend(cfg.Store.QuotaBytes), func() {}, nil

	case config.DriverRedis:
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisBackend(rdb, cfg.Store.Prefix), func() { _ = rdb.Close() }, nil

	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		b := storage.NewMySQLBackend(db)
		if err := b.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql schema: %w", err)
		}
		return b, func() { _ = db.Close() }, nil

	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		return storage.NewMongoBackend(db, cfg.Mongo.Collection), func() { _ = client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Store.Driver)
}
