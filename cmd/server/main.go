// @title        Library Tracker API
// @version      1.0
// @description  Register users, manage the book catalog, and track borrowing.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/api"
	"github.com/sirpyerre/library-tracker/internal/api/handler"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
	"github.com/sirpyerre/library-tracker/internal/core/service"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/config"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/db/jsonfile"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/db/mongo"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/db/redis"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/db/sqlite"
	"github.com/sirpyerre/library-tracker/pkg/logger"
)

const tokenTTL = 24 * time.Hour

// storage bundles the repositories of the selected backend with its
// readiness check and cleanup.
type storage struct {
	users ports.UserRepository
	books ports.BookRepository
	ping  handler.Pinger
	close func(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "library-tracker",
		Env:     cfg.Env,
	})

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to initialise storage")
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("storage initialised")

	ready := map[string]handler.Pinger{"store": store.ping}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer client.Close()

		idemStore := redis.NewIdempotencyStore(client)
		idem = idemStore
		ready["redis"] = idemStore
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	e := api.NewRouter(api.Deps{
		Users:     service.NewUserService(store.users, cfg.JWTSecret, tokenTTL, log),
		Books:     service.NewBookService(store.books, store.users, idem, log),
		Ready:     ready,
		JWTSecret: cfg.JWTSecret,
		StaticDir: cfg.StaticDir,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("library tracker server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := store.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("storage close")
	}
	log.Info().Msg("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.Initialize(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storage{
			users: mongo.NewUserRepository(db),
			books: mongo.NewBookRepository(db),
			ping:  mongo.NewPinger(client),
			close: client.Disconnect,
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			users: sqlite.NewUserRepository(db),
			books: sqlite.NewBookRepository(db),
			ping:  db,
			close: func(context.Context) error { return db.Close() },
		}, nil

	default:
		s := jsonfile.New(cfg.Store.DataPath, log)
		if err := s.Initialize(ctx); err != nil {
			return nil, err
		}
		return &storage{
			users: jsonfile.NewUserRepository(s),
			books: jsonfile.NewBookRepository(s),
			ping:  s,
			close: func(context.Context) error { return nil },
		}, nil
	}
}
