package database

import (
	"context"
	"fmt"

	"chatbot/config"
	apperrors "chatbot/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.StoreDriver and ensures its schema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		store, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("Successfully connected to the database", zap.String("driver", cfg.StoreDriver))
		return store, nil

	case config.StoreDriverSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("Opened SQLite store", zap.String("path", cfg.SQLitePath))
		return store, nil

	case config.StoreDriverBadger:
		store, err := NewBadgerStore(BadgerConfig{
			Path:       cfg.BadgerPath,
			SyncWrites: true,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Opened Badger store", zap.String("path", cfg.BadgerPath))
		return store, nil

	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, answers will not survive a restart")
		return NewMemoryStore(), nil

	default:
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, fmt.Sprintf("unknown store driver %q", cfg.StoreDriver))
	}
}
