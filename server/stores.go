package server

import (
	"context"
	"fmt"

	"bmapp/config"
	"bmapp/db"
	"bmapp/logger"
	"bmapp/repository"
)

// Stores are the persistence backends selected by CATALOG_DRIVER.
type Stores struct {
	Audio repository.AudioRepository
	Users repository.UserRepository
	close func(context.Context) error
}

// Close releases the underlying connections.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Migrate creates tables, collections and indexes.
func (s *Stores) Migrate(ctx context.Context) error {
	if err := s.Audio.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.Users.Migrate(ctx)
}

// OpenStores connects the catalog and user stores for cfg.CatalogDriver.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.CatalogDriver {
	case config.DriverMySQL, "":
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Audio: repository.NewGormAudioRepository(gdb),
			Users: repository.NewGormUserRepository(gdb),
			close: func(context.Context) error { return db.CloseGormDB() },
		}, nil

	case config.DriverMongo:
		mdb, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Audio: repository.NewMongoAudioRepository(mdb),
			Users: repository.NewMongoUserRepository(mdb),
			close: db.CloseMongo,
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory catalog; data is lost on restart")
		return &Stores{
			Audio: repository.NewMemoryAudioRepository(),
			Users: repository.NewMemoryUserRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown CATALOG_DRIVER %q (want mysql, mongo or memory)", cfg.CatalogDriver)
}
