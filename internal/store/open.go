package store

import (
	"context"
	"fmt"
	"log"

	"github.com/druedada/projecte-final/internal/config"
	"github.com/druedada/projecte-final/internal/store/memorystore"
	"github.com/druedada/projecte-final/internal/store/mongostore"
	"github.com/druedada/projecte-final/internal/store/sqlstore"
	"github.com/druedada/projecte-final/internal/task"
)

type remoteStore interface {
	task.TaskRepository
	task.Pinger
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the repository selected by cfg.Driver, waits for its
// database and applies its schema. The returned close func is never nil.
func Open(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (task.TaskRepository, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}
	noop := func() error { return nil }

	var (
		st  remoteStore
		err error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		return memorystore.NewTaskStore(), noop, nil
	case config.DriverMongo:
		st, err = mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		st, err = sqlstore.Open(sqlstore.Postgres, cfg.PostgresURL)
	case config.DriverSQLite:
		st, err = sqlstore.Open(sqlstore.SQLite, cfg.SQLitePath)
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, noop, err
	}

	if err := WaitReady(ctx, st, cfg.ConnectAttempts, DefaultBackoff(), logger); err != nil {
		_ = st.Close()
		return nil, noop, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, noop, err
	}

	logger.Printf("store ready: driver=%s", cfg.Driver)
	return st, st.Close, nil
}
