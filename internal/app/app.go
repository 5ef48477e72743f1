package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/database"
	"github.com/vancomm/minefield/internal/metrics"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/store"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger     *slog.Logger
	cfg        *config.Config
	router     *http.ServeMux
	store      store.Store
	memory     *store.Memory
	redis      *redis.Client
	db         *pgxpool.Pool
	jwt        *config.JWT
	ws         *config.Upgrader
	metrics    *metrics.Metrics
	migrations fs.FS
}

func New(logger *slog.Logger, cfg *config.Config, migrations fs.FS) *App {
	router := http.NewServeMux()

	app := &App{
		logger:     logger,
		cfg:        cfg,
		router:     router,
		migrations: migrations,
	}

	return app
}

func (a *App) openStore(ctx context.Context) error {
	switch a.cfg.Store.Kind {
	case config.StoreRedis:
		client, err := store.NewRedisClient(ctx, &redis.Options{
			Addr:     a.cfg.Store.RedisAddr,
			Password: a.cfg.Store.RedisPassword,
			DB:       a.cfg.Store.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("unable to connect to redis: %w", err)
		}
		a.redis = client
		a.store = store.NewRedis(client, a.cfg.Store.TTL)
	default:
		a.memory = store.NewMemory(a.cfg.Store.TTL)
		a.store = a.memory
	}
	a.logger.Info("session store ready", slog.String("kind", a.cfg.Store.Kind))
	return nil
}

func (a *App) openDatabase(ctx context.Context) error {
	if !a.cfg.Database.Enabled() {
		a.logger.Warn("no database configured, outcomes will not be recorded")
		return nil
	}
	db, migrator, err := database.ConnectAndMigrate(ctx, a.cfg.Database, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	if version, dirty, err := migrator.Version(); err == nil {
		a.logger.Info("database migrated",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty),
		)
	}
	migrator.Close()
	a.db = db
	return nil
}

// Setup opens every dependency and registers the routes. Start calls it;
// tests call it directly and use Handler.
func (a *App) Setup(ctx context.Context) error {
	if err := a.openStore(ctx); err != nil {
		return err
	}
	if err := a.openDatabase(ctx); err != nil {
		return err
	}

	jwt, err := config.NewJWT(a.cfg.Token)
	if err != nil {
		return err
	}
	a.jwt = jwt

	a.ws = config.NewUpgrader(a.cfg.WebSocket)
	a.metrics = metrics.New()

	a.loadRoutes()
	return nil
}

func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if base := strings.TrimSuffix(a.cfg.App.BasePath, "/"); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Cors(a.cfg.WebSocket.AllowedOrigins),
		middleware.Logging(a.logger),
	)
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("unable to close redis client", slog.Any("error", err))
		}
	}
}

func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:         a.cfg.App.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", a.cfg.App.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return server.Shutdown(sCtx)
	})

	if a.memory != nil {
		g.Go(func() error {
			return a.memory.Janitor(ctx, a.logger, a.cfg.Store.SweepInterval)
		})
	}

	return g.Wait()
}
