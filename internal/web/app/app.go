package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aussiebroadwan/tenantry/internal/web/events"
	httpapi "github.com/aussiebroadwan/tenantry/internal/web/http"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/internal/web/store"
	"github.com/aussiebroadwan/tenantry/internal/web/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenantry/internal/web/view"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/metricsx"
	"github.com/aussiebroadwan/tenantry/pkg/sessionx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application is the web service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	nc      *nats.Conn // nil unless nats_url is set
	metrics *metricsx.Metrics
	events  events.Sink

	userService         *service.UserService
	invoiceService      *service.InvoiceService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "tenantry-web",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New opens the database, applies migrations and wires the HTTP server.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: metricsx.New(),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	db, err := OpenStore(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initEvents(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initServices()
	if err := app.initHTTP(); err != nil {
		app.closeEvents()
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("web service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		app.closeEvents()
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error("error closing database", "error", cerr)
		}
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down web service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.closeEvents()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("web service stopped")
	return nil
}

// OpenStore opens the SQLite database in cfg and applies migrations.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "database_file", cfg.DatabaseFile)
	return db, nil
}

// initEvents records app events in the database and, when configured,
// publishes them to NATS as well.
func (app *Application) initEvents() error {
	sinks := events.Multi{&events.StoreSink{Events: app.db.AppEvents()}}

	if app.cfg.NATSURL != "" {
		nc, err := events.Connect(app.cfg.NATSURL, app.logger)
		if err != nil {
			return err
		}
		app.nc = nc
		sinks = append(sinks, &events.NATSSink{Conn: nc, Subject: app.cfg.NATSSubject})
	}

	app.events = events.Counted(sinks, app.metrics)
	return nil
}

func (app *Application) closeEvents() {
	if app.nc == nil {
		return
	}
	if err := app.nc.Drain(); err != nil {
		app.logger.Error("error draining nats connection", "error", err)
	}
}

func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db, Events: app.events}
	app.invoiceService = &service.InvoiceService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.EventRetention,
	)
}

func (app *Application) initHTTP() error {
	secret := []byte(app.cfg.SessionSecret)
	if len(secret) == 0 {
		tok, err := cryptox.RandomToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		secret = []byte(tok)
		app.logger.Warn("session_secret is not set, sessions will not survive a restart")
	}

	sessions, err := sessionx.New(sessionx.Config{
		Secret: secret,
		TTL:    app.cfg.SessionTTL,
		Secure: app.cfg.SecureCookies(),
	})
	if err != nil {
		return err
	}

	views, err := view.Load()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	router := httpapi.NewRouter(
		httpapi.Options{
			BuildVersion:  BuildVersion,
			BaseDomain:    app.cfg.BaseDomain,
			SecureCookies: app.cfg.SecureCookies(),
			PerPage:       app.cfg.PerPage,
			Secret:        secret,
		},
		app.db,
		sessions,
		views,
		app.logger,
	)

	router.UserService = app.userService
	router.InvoiceService = app.invoiceService
	router.Metrics = app.metrics
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
