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

	httpapi "github.com/aussiebroadwan/customers/internal/customers/http"
	"github.com/aussiebroadwan/customers/internal/customers/idp"
	"github.com/aussiebroadwan/customers/internal/customers/metrics"
	"github.com/aussiebroadwan/customers/internal/customers/service"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/internal/customers/store/drivers/postgres"
	"github.com/aussiebroadwan/customers/internal/customers/store/drivers/sqlite"
	"github.com/aussiebroadwan/customers/pkg/jwtx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "customer-service"
)

// Application wires the customer service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	idp      *idp.Client
	verifier jwtx.Verifier
	metrics  *metrics.Metrics

	clientService *service.ClientService
	tokenService  *service.TokenService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with its database migrated and its HTTP server
// ready to start.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	app.idp = idp.NewClient(cfg.IDPBaseURL, cfg.IDPRealm, cfg.IDPTimeout)
	app.verifier = InitVerifier(ctx, cfg, app.idp, app.idp.Issuer(), app.logger)

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("customer service starting",
		"port", app.cfg.Port,
		"database", app.cfg.DatabaseDriver,
		"idp_realm", app.cfg.IDPRealm,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
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

// Shutdown drains in-flight requests for up to ShutdownGracePeriod and closes
// the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down customer service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("customer service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", app.cfg.DatabaseDriver, err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices() {
	app.clientService = &service.ClientService{Store: app.db}
	app.metrics = metrics.New(app.clientService, app.logger)
	app.clientService.Observer = app.metrics

	app.tokenService = &service.TokenService{
		Provider: app.idp,
		ClientID: app.cfg.IDPClientID,
		Observer: app.metrics,
	}
}

func (app *Application) initHTTP() error {
	router, err := httpapi.NewRouter(
		app.verifier,
		app.cfg.IDPClientID,
		BuildVersion,
		app.db,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	router.ClientService = app.clientService
	router.TokenService = app.tokenService
	router.Metrics = app.metrics.Handler()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
