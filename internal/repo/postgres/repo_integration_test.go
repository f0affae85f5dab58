//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/blogspace/internal/db"
	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/repo/repotest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "blogspace_test", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/blogspace_test?sslmode=disable", host, port.Int())

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = db.NewPool(ctx, dsn, 4)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.MigrateUp(dsn))
	// second run must be a no-op
	require.NoError(t, db.MigrateUp(dsn))

	return pool
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE posts, accounts`)
	require.NoError(t, err)
}

func TestPostgres_Repositories(t *testing.T) {
	pool := setupPostgresContainer(t)

	t.Run("posts", func(t *testing.T) {
		repotest.RunPostRepository(t, func(t *testing.T) repotest.PostRepository {
			truncate(t, pool)
			return NewPostsRepo(pool, nil)
		})
	})

	t.Run("accounts", func(t *testing.T) {
		repotest.RunAccountRepository(t, func(t *testing.T) repotest.AccountRepository {
			truncate(t, pool)
			return NewAccountsRepo(pool, nil)
		})
	})

	t.Run("concurrent_duplicate_email", func(t *testing.T) {
		truncate(t, pool)
		repo := NewAccountsRepo(pool, nil)

		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			go func() {
				_, err := repo.Create(context.Background(), account.Account{
					ID:           uuid.NewString(),
					Name:         "Racer",
					Email:        "race@example.com",
					PasswordHash: "x",
					CreatedAt:    time.Now().UTC(),
				})
				errs <- err
			}()
		}

		var ok, dup int
		for i := 0; i < 10; i++ {
			err := <-errs
			switch {
			case err == nil:
				ok++
			case err == account.ErrDuplicateEmail:
				dup++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, 1, ok)
		assert.Equal(t, 9, dup)
	})
}
