package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todo/internal/config"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todo/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/internal/services/lifecycle"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/repository/postgres"
	sqliteRepo "github.com/fastygo/todo/repository/sqlite"
)

// storage is the primary store selected by STORAGE_DRIVER.
type storage struct {
	accounts repository.AccountRepository
	tasks    repository.TaskRepository
	pinger   monitor.Pinger
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, manager, logger)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, manager, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	if cfg.Migrations.Enabled {
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("postgres", func(context.Context) error {
		pgInfra.Close(pool, logger)
		return nil
	})

	return &storage{
		accounts: postgres.NewAccountRepository(pool),
		tasks:    postgres.NewTaskRepository(pool),
		pinger:   pool,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	db, err := sqliteInfra.Open(ctx, cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	manager.Closer("sqlite", db.Close)

	if cfg.Migrations.Enabled {
		if err := sqliteInfra.RunMigrations(db, logger); err != nil {
			return nil, fmt.Errorf("sqlite migrations: %w", err)
		}
	}

	return &storage{
		accounts: sqliteRepo.NewAccountRepository(db),
		tasks:    sqliteRepo.NewTaskRepository(db),
		pinger:   monitor.PingFunc(db.PingContext),
	}, nil
}
