// Package storyverse assembles the application: storage, migrations, cache,
// event publishing, the service layer and the HTTP server.
package storyverse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/storyverse/storyverse/internal/cache"
	"github.com/storyverse/storyverse/internal/config"
	"github.com/storyverse/storyverse/internal/events"
	"github.com/storyverse/storyverse/internal/generation"
	"github.com/storyverse/storyverse/internal/lib/jwt"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/migrations"
	"github.com/storyverse/storyverse/internal/ratelimit"
	authservice "github.com/storyverse/storyverse/internal/services/auth"
	entitlementservice "github.com/storyverse/storyverse/internal/services/entitlement"
	paymentservice "github.com/storyverse/storyverse/internal/services/payment"
	storyservice "github.com/storyverse/storyverse/internal/services/story"
	"github.com/storyverse/storyverse/internal/storage/repository"
)

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	publisher *events.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// The event stream is optional: without a broker the app runs and the
	// entitlement service simply skips emission.
	var publisher *events.Publisher
	if cfg.AMQPConnection.AMQPURL != "" {
		publisher, err = events.Connect(cfg.AMQPConnection.AMQPURL, cfg.AMQPConnection.Exchange)
		if err != nil {
			logger.Warn("event broker unavailable, lifecycle events disabled", sl.Err(err))
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	generator := generation.New(cfg.OpenAI)
	limiter := ratelimit.New(cfg.GenerationLimit.Window)

	authSvc := authservice.New(db, db, jwtMaker, cfg.JWTToken.TokenTTL)
	var entitlementPublisher entitlementservice.EventPublisher
	if publisher != nil {
		entitlementPublisher = publisher
	}
	entitlementSvc := entitlementservice.New(logger, db, db, cacheRedis, entitlementPublisher)
	paymentSvc := paymentservice.New(db)
	storySvc := storyservice.New(logger, db, db, db, generator)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:        authSvc,
		Entitlement: entitlementSvc,
		Payment:     paymentSvc,
		Story:       storySvc,
	}, jwtMaker, limiter, cfg.Env == "prod")

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		publisher: publisher,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.publisher != nil {
			_ = a.publisher.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
