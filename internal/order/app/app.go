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

	httpapi "github.com/aussiebroadwan/bitebank/internal/order/http"
	"github.com/aussiebroadwan/bitebank/internal/order/imagestore"
	"github.com/aussiebroadwan/bitebank/internal/order/service"
	"github.com/aussiebroadwan/bitebank/internal/order/store"
	"github.com/aussiebroadwan/bitebank/internal/order/store/drivers/sqlite"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the order service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	images imagestore.Store
	codec  *jwtx.HS256Codec

	orderService *service.OrderService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "order-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewHS256Codec([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initImages(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.orderService = &service.OrderService{Store: app.db}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("order service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"image_store", app.cfg.ImageStore,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down order service...")

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

	app.logger.Info("order service stopped")
	return nil
}

// initDatabase opens the sqlite store and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(host)
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

// initImages opens the configured image backend
func (app *Application) initImages() error {
	switch app.cfg.ImageStore {
	case imagestore.BackendMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		images, err := imagestore.NewMinio(ctx, imagestore.MinioConfig{
			Endpoint:  app.cfg.MinioEndpoint,
			AccessKey: app.cfg.MinioAccessKey,
			SecretKey: app.cfg.MinioSecretKey,
			Bucket:    app.cfg.MinioBucket,
			UseSSL:    app.cfg.MinioUseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize minio image store: %w", err)
		}
		app.images = images
	default:
		images, err := imagestore.NewLocal(app.cfg.ImageDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local image store: %w", err)
		}
		app.images = images
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.orderService,
		app.images,
		httpx.LocalVerifier(app.codec),
		app.cfg.AllowedOrigins,
		BuildVersion,
		app.logger,
	)
	router.MaxUploadBytes = app.cfg.MaxUploadBytes
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
