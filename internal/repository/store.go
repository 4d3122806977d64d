package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"driver_dashboard/internal/config"
	"driver_dashboard/internal/logger"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Drivers DriverRepository
	Users   UserRepository

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend's resources.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config, log logger.ILogger) (*Store, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		log.Info("using file storage", logger.String("data_file", cfg.DataFile), logger.String("users_file", cfg.UsersFile))
		return NewFileStore(cfg.DataFile, cfg.UsersFile), nil

	case config.StorageSQLite:
		db, err := config.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite storage", logger.String("path", cfg.SQLitePath))
		return &Store{
			Drivers: NewSQLiteDriverRepository(db),
			Users:   NewSQLiteUserRepository(db),
			ping:    db.PingContext,
			close:   func() { db.Close() },
		}, nil

	case config.StoragePostgres:
		pool, err := config.ConnectDB(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err := config.MigratePostgres(cfg.DB, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Drivers: NewDriverRepository(pool),
			Users:   NewUserRepository(pool),
			ping:    pool.Ping,
			close:   pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// NewFileStore builds the JSON document backend.
func NewFileStore(dataFile, usersFile string) *Store {
	return &Store{
		Drivers: NewFileDriverRepository(dataFile),
		Users:   NewFileUserRepository(usersFile),
		ping: func(context.Context) error {
			dir := filepath.Dir(dataFile)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("data directory unavailable: %w", err)
			}
			return nil
		},
	}
}
