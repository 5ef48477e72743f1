package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/vancomm/minefield/internal/database"
	"github.com/vancomm/minefield/migrations"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"

	postgresPort  = "5432/tcp"
	postgresImage = "postgres"
	postgresTag   = "16-alpine"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis       *redis.Client
	Postgres    *pgxpool.Pool
	PostgresURL string
}

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration
	return pool
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge resource: %v", err)
		}
	})

	return resource
}

func newSuite(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	return ctx, &Suite{T: t, Logger: logger}
}

// WithRedis starts a throwaway redis container. The test is skipped when
// docker is unavailable or -short is set.
func WithRedis(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	pool := newPool(t)
	ctx, st := newSuite(t)

	resource := run(t, pool, &dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	})

	if err := pool.Retry(func() error {
		st.Redis = redis.NewClient(&redis.Options{
			Addr: resource.GetHostPort(redisPort),
		})
		return st.Redis.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err := st.Redis.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() { st.Redis.Close() })

	return ctx, st
}

// WithPostgres starts a throwaway postgres container and applies the
// embedded migrations to it.
func WithPostgres(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	pool := newPool(t)
	ctx, st := newSuite(t)

	const (
		user     = "minefield"
		password = "minefield"
		dbName   = "minefield"
	)

	resource := run(t, pool, &dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbName,
		},
	})

	url := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user, password, resource.GetHostPort(postgresPort), dbName,
	)

	if err := pool.Retry(func() error {
		var err error
		st.Postgres, err = pgxpool.New(ctx, url)
		if err != nil {
			return err
		}
		return st.Postgres.Ping(ctx)
	}); err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}

	t.Cleanup(st.Postgres.Close)
	st.PostgresURL = url

	migrator, err := database.Migrate(url, migrations.FS)
	if err != nil {
		t.Fatalf("could not migrate database: %v", err)
	}
	t.Cleanup(func() { migrator.Close() })

	return ctx, st
}
