// @title                       Catalog API
// @version                     1.0
// @description                 Product catalog guarded by role-based JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/api"
	"github.com/99minutos/catalog-api/internal/api/handler"
	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/service"
	"github.com/99minutos/catalog-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/catalog-api/internal/infrastructure/db/redis"
	"github.com/99minutos/catalog-api/internal/infrastructure/queue"
	"github.com/99minutos/catalog-api/internal/pkg/config"
	"github.com/99minutos/catalog-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "catalog-api",
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	users := mongo.NewUserRepository(db, cfg.StoreTimeout)
	roles := mongo.NewRoleRepository(db, cfg.StoreTimeout)
	products := mongo.NewProductRepository(db, cfg.StoreTimeout)
	audit := mongo.NewAuditRepository(db, cfg.StoreTimeout)
	if err := mongo.EnsureIndexes(ctx, users, roles, products, audit); err != nil {
		return err
	}

	readiness := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		readiness["redis"] = handler.RedisCheck(rdb)
	}

	// --- Core ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte(cfg.JWT.SigningKey),
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		TTL:        cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	credentials, err := service.NewCredentialStore(users, domain.PasswordPolicy{
		MinLength:     cfg.Password.MinLength,
		RequireUpper:  cfg.Password.RequireUpper,
		RequireLower:  cfg.Password.RequireLower,
		RequireDigit:  cfg.Password.RequireDigit,
		RequireSymbol: cfg.Password.RequireSymbol,
	}, cfg.Password.BcryptCost)
	if err != nil {
		return err
	}

	registry := service.NewRoleRegistry(roles)
	if err := bootstrapRoles(ctx, registry, cfg.BootstrapRoles, log); err != nil {
		return err
	}

	compensator := queue.NewCompensator(cfg.CompensationWorkers, credentials, log)
	compensator.Start(ctx)

	authService := service.NewAuthService(credentials, registry, tokens, log).
		WithAudit(audit).
		WithCompensator(compensator)
	if rdb != nil {
		authService = authService.WithLockout(redis.NewLockoutStore(rdb, cfg.Lockout.Threshold, cfg.Lockout.Window))
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Logger:    log,
		Tokens:    tokens,
		Auth:      handler.NewAuthHandler(authService),
		Products:  handler.NewProductHandler(service.NewProductService(products, log)),
		Readiness: readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
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

// bootstrapRoles makes sure the built-in roles exist before traffic arrives.
func bootstrapRoles(ctx context.Context, registry *service.RoleRegistry, names []string, log zerolog.Logger) error {
	for _, name := range names {
		_, err := registry.Create(ctx, name)
		switch {
		case err == nil:
			log.Info().Str("role", name).Msg("role created")
		case errors.Is(err, domain.ErrRoleAlreadyExists):
		default:
			return err
		}
	}
	return nil
}
