package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable key/value sink for the workspace state blob.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend  string
	Path     string
	Database DatabaseConfig
}

// New opens the backend selected by cfg.Backend.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case BackendMemory:
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	case BackendFile, "":
		logger.Info("Using file storage", zap.String("path", cfg.Path))
		return NewFileStorage(cfg.Path)
	case BackendSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.Path))
		return NewSQLiteStorage(ctx, cfg.Path)
	case BackendPostgres:
		logger.Info("Using PostgreSQL storage",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName))
		pg, err := NewPostgresStorage(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return NewBreakerStorage(pg, DefaultBreakerConfig("postgres"), logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
