package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maaackz/folio/internal/config"
	"github.com/maaackz/folio/internal/db"
	"github.com/maaackz/folio/internal/ops"
	"github.com/maaackz/folio/internal/storage"
)

// openStore opens the backend selected by cfg.Storage.
func openStore(ctx context.Context, cfg *config.Config, baseDir string) (*ops.Store, error) {
	backend, err := openBackend(ctx, cfg, baseDir)
	if err != nil {
		return nil, err
	}
	return ops.NewStore(backend), nil
}

func openBackend(ctx context.Context, cfg *config.Config, baseDir string) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageFile:
		return storage.NewFile(cfg.DataPath(baseDir))
	case config.StorageSQLite:
		database, err := db.Init(cfg.DataPath(baseDir))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.ConfigurePool(database, cfg)
		return db.NewStore(database, db.SQLite), nil
	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		database, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.ConfigurePool(database, cfg)
		return db.NewStore(database, db.Postgres), nil
	case config.StorageRedis:
		return storage.NewRedis(cfg.RedisURL, storage.DefaultRedisPrefix)
	case config.StorageMemory:
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// newLogger builds the process logger. Output goes to w (stderr in
// practice) since stdout carries command output and the MCP transport.
func newLogger(cfg *config.Config, w io.Writer, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
