// Package platform opens the storage media selected by configuration.
package platform

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/pkg/cache"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/database"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// Backend bundles the opened storage handles so they can be closed together.
type Backend struct {
	Store storage.KeyedStore

	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	closer []func() error
}

// Close releases every handle in reverse opening order.
func (b *Backend) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		if err := b.closer[i](); err != nil {
			b.logger.Warn("closing storage handle", zap.Error(err))
		}
	}
	b.closer = nil
}

// Postgres returns the shared pool, opening it and applying migrations on first use.
func (b *Backend) Postgres(ctx context.Context) (*sqlx.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	db, err := database.NewPostgres(ctx, b.cfg.Database)
	if err != nil {
		return nil, err
	}
	b.closer = append(b.closer, db.Close)
	if b.cfg.Database.RunMigrations {
		if err := database.Migrate(ctx, db, b.logger); err != nil {
			return nil, err
		}
	}
	b.db = db
	return db, nil
}

// Open selects the workspace store named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backend{cfg: cfg, logger: logger}
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		b.Store = storage.NewMemoryStore()
	case config.StoreDriverFile, "":
		fs, err := storage.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		b.Store = fs
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.closer = append(b.closer, client.Close)
		b.Store = repository.NewRedisStore(client, cfg.Redis.KeyPrefix)
	case config.StoreDriverPostgres:
		db, err := b.Postgres(ctx)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = repository.NewSQLStore(db)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	logger.Info("workspace store ready", zap.String("driver", cfg.Store.Driver))
	return b, nil
}
