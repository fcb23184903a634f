package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/2003abdulhadi/clypsy-website/internal/core/port"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/config"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/database"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/kafka"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/logger"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/security"
	"github.com/2003abdulhadi/clypsy-website/internal/repository/postgres"
	"github.com/2003abdulhadi/clypsy-website/internal/transport/http/middleware"
	"github.com/2003abdulhadi/clypsy-website/internal/transport/http/routes"
	"github.com/2003abdulhadi/clypsy-website/internal/usecase"
)

// App wires configuration, infrastructure, and the HTTP transport together.
type App struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	pool     *pgxpool.Pool
	producer *kafka.Producer
	router   *gin.Engine
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if cfg.Postgres.MigrateOnStart {
		if err := database.Migrate(database.DSN(cfg.Postgres), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	accessIssuer, err := security.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenTTL, cfg.App.Name)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init access token issuer: %w", err)
	}

	refreshIssuer, err := security.NewTokenIssuer(cfg.JWT.RefreshSecret, cfg.JWT.RefreshTokenTTL, cfg.App.Name)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init refresh token issuer: %w", err)
	}

	hasher := security.NewPasswordHasher(cfg.Bcrypt.Cost)

	rules := []security.PasswordRule{
		security.RequiredRule(),
		security.MinLengthRule(8),
		security.RequireLowerRule(),
		security.RequireUpperRule(),
		security.RequireDigitRule(),
		security.RequireSymbolRule(),
	}
	if cfg.Password.MinStrength > 0 {
		rules = append(rules, security.RequirePasswordStrengthRule(cfg.Password.MinStrength))
	}
	validator := security.NewPasswordValidator(rules...)

	userRepo := postgres.NewUserRepository(pool)

	var producer *kafka.Producer
	var events port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		events = kafka.NewEventPublisher(producer, cfg.App, log)
	} else {
		log.Warn("No Kafka brokers configured, using stub event publisher")
		events = kafka.NewStubPublisher(log)
	}

	authService, err := usecase.NewAuthService(userRepo, hasher, validator, accessIssuer, refreshIssuer, events, log)
	if err != nil {
		if producer != nil {
			_ = producer.Close()
		}
		pool.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		if producer != nil {
			_ = producer.Close()
		}
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	router := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Auth:     authService,
		Metrics:  metrics,
		Database: pool,
	})

	return &App{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		producer: producer,
		router:   router,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts everything down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		a.shutdownInfra()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	a.shutdownInfra()
	return nil
}

func (a *App) shutdownInfra() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Kafka producer close failed", zap.Error(err))
		}
	}
	a.pool.Close()
	_ = a.logger.Sync()
}
