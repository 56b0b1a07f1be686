// Command server runs the auth service.
//
// @title        Auth Service API
// @version      1.0
// @description  Registration, cookie-based login and SUPER_ADMIN-gated role management.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/credential"
	mongostore "github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/infrastructure/seed"
	"github.com/99minutos/auth-service/internal/password"
	"github.com/99minutos/auth-service/internal/pkg/config"
	"github.com/99minutos/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// userStore is what the bootstrap needs from a storage backend.
type userStore interface {
	ports.UserRepository
	ports.UserSeeder
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, checks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher := password.NewBcrypt(cfg.Auth.BcryptCost)
	codec, err := credential.New(cfg.Auth.CredentialMode, cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	if cfg.Auth.CredentialMode == credential.ModePlain {
		log.Warn().Msg("credential cookies are unsigned; set CREDENTIAL_MODE=jwt to sign them")
	}

	if cfg.SeedFile != "" {
		log.Info().Str("file", cfg.SeedFile).Msg("seeding data")
		if _, err := seed.New(store, hasher, cfg.SeedWorkers, log).RunFile(ctx, cfg.SeedFile); err != nil {
			log.Error().Err(err).Msg("seeding failed")
		}
	}

	e := api.NewRouter(api.Deps{
		AuthService: service.NewAuthService(store, hasher, codec, log),
		RoleService: service.NewRoleService(store, log),
		Codec:       codec,
		CookieName:  cfg.Auth.CookieName,
		Checks:      checks,
		Logger:      log,
		Registerer:  prometheus.DefaultRegisterer,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("server is running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and returns it with its
// readiness checks and a close function.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (userStore, map[string]handler.Checker, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

		checks := map[string]handler.Checker{"redis": redisstore.Pinger(client)}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}
		return redisstore.NewUserRepository(client), checks, closeFn, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.ConnectionURI(), Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}

		checks := map[string]handler.Checker{"mongodb": mongostore.Pinger(db)}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		}
		return repo, checks, closeFn, nil
	}
}
