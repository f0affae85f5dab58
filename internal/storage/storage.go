// Package storage opens the configured persistence backend and hands out
// its repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/db"
	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/geocoder89/blogspace/internal/repo/memory"
	"github.com/geocoder89/blogspace/internal/repo/mongorepo"
	"github.com/geocoder89/blogspace/internal/repo/postgres"
)

type PostRepository interface {
	List(ctx context.Context) ([]post.Summary, error)
	Search(ctx context.Context, term string) ([]post.Summary, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	Create(ctx context.Context, in post.CreateInput) (post.Post, error)
	Update(ctx context.Context, id string, fields post.UpdateFields) (post.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a account.Account) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
}

type Backend struct {
	Driver   string
	Posts    PostRepository
	Accounts AccountRepository

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	close   func()
}

// Ping reports whether the backend answers. Used by /readyz.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Migrate brings the schema (Postgres) or indexes (Mongo) up to date.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.migrate == nil {
		return nil
	}
	return b.migrate(ctx)
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

func Open(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info("storage_opened", "driver", cfg.StorageDriver, "max_conns", cfg.DBMaxConns)

		return &Backend{
			Driver:   cfg.StorageDriver,
			Posts:    postgres.NewPostsRepo(pool, prom),
			Accounts: postgres.NewAccountsRepo(pool, prom),
			ping:     pool.Ping,
			migrate: func(context.Context) error {
				return db.MigrateUp(cfg.DBURL)
			},
			close: pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDB)
		log.Info("storage_opened", "driver", cfg.StorageDriver, "database", cfg.MongoDB)

		return &Backend{
			Driver:   cfg.StorageDriver,
			Posts:    mongorepo.NewPostsRepo(database, prom),
			Accounts: mongorepo.NewAccountsRepo(database, prom),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			migrate: func(ctx context.Context) error {
				return mongorepo.EnsureIndexes(ctx, database)
			},
			close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil

	case config.DriverMemory:
		log.Warn("storage_opened", "driver", cfg.StorageDriver, "note", "data is lost on restart")
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewMemory returns an in-process backend. Tests build routers on it.
func NewMemory() *Backend {
	return &Backend{
		Driver:   config.DriverMemory,
		Posts:    memory.NewPostsRepo(),
		Accounts: memory.NewAccountsRepo(),
	}
}
