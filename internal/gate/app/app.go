package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	httpapi "github.com/aussiebroadwan/gatehouse/internal/gate/http"
	"github.com/aussiebroadwan/gatehouse/internal/gate/relay"
	"github.com/aussiebroadwan/gatehouse/internal/gate/service"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store/drivers/postgres"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gate service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	cache *cache.Client
	relay *relay.ChangeRelay

	// Services
	authService      *service.AuthService
	workspaceService *service.WorkspaceService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gate-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("GATE_JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	// Set pepper path for API token hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.ReloadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.cache.Close()
		_ = app.db.Close()
		return nil, err
	}
	app.initRelay()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if err := app.relay.Start(); err != nil {
		return fmt.Errorf("failed to start change relay: %w", err)
	}

	app.logger.Info("gate service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gate service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the change relay
	app.relay.Stop()

	// Close cache connection
	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gate service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := postgres.NewStore(app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache connects to Redis.
func (app *Application) initCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.New(ctx, app.cfg.RedisAddr, app.cfg.RedisPass, app.cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = client

	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	verifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	permissions := &service.PermissionService{
		Store:    app.db,
		Cache:    app.cache,
		CacheTTL: app.cfg.CacheTTL,
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		Verifier:        verifier,
		Permissions:     permissions,
		Issuer:          app.cfg.Issuer,
		Audience:        app.cfg.Audience,
		SessionValidity: app.cfg.SessionValidity,
	}

	app.workspaceService = &service.WorkspaceService{
		Store: app.db,
		Revoker: &service.Revoker{
			Cache:     app.cache,
			CacheTTL:  app.cfg.CacheTTL,
			TTLMargin: app.cfg.TTLMargin,
		},
	}

	return nil
}

// initRelay wires the Postgres LISTEN connection to the Redis publisher.
func (app *Application) initRelay() {
	listener := relay.NewPQListener(app.cfg.DatabaseURL, app.logger)
	app.relay = relay.NewChangeRelay(listener, app.cache, app.cfg.ChangeChannel, app.logger)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.cache, app.logger)

	// Wire services to router
	router.AuthService = app.authService
	router.WorkspaceService = app.workspaceService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
