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

	"github.com/aussiebroadwan/bitebank/internal/gateway/forward"
	httpapi "github.com/aussiebroadwan/bitebank/internal/gateway/http"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application is the gateway process.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// client is shared by both forwarders and the remote verifier
	client   *http.Client
	verifier httpx.Verifier

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		client: forward.NewClient(cfg.UpstreamTimeout, cfg.MaxIdleConns),
	}

	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// Handler exposes the routed handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"auth_url", app.cfg.AuthURL,
		"order_url", app.cfg.OrderURL,
		"verify_mode", app.cfg.VerifyMode,
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

// Shutdown drains in-flight requests and releases pooled connections
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var err error
	if err = app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.client.CloseIdleConnections()

	app.logger.Info("gateway stopped")
	return err
}

func (app *Application) initVerifier(authClient *authsdk.SDKClient) error {
	if app.cfg.VerifyMode == VerifyLocal {
		codec, err := jwtx.NewHS256Codec([]byte(app.cfg.Secret))
		if err != nil {
			return fmt.Errorf("failed to initialize token codec: %w", err)
		}
		app.verifier = httpx.LocalVerifier(codec)
		return nil
	}

	app.verifier = forward.RemoteVerifier(authClient)
	return nil
}

// initHTTP wires forwarders, verifier, router and server
func (app *Application) initHTTP() error {
	auth, err := forward.New("auth", app.cfg.AuthURL, app.client)
	if err != nil {
		return fmt.Errorf("invalid auth url: %w", err)
	}
	order, err := forward.New("order", app.cfg.OrderURL, app.client)
	if err != nil {
		return fmt.Errorf("invalid order url: %w", err)
	}

	authClient := authsdk.NewSDKClientWithHTTP(app.cfg.AuthURL, app.client)
	if err := app.initVerifier(authClient); err != nil {
		return err
	}

	router := httpapi.NewRouter(auth, order, app.verifier, app.cfg.AllowedOrigins, BuildVersion, app.logger)
	router.Ready = []httpapi.Upstream{
		{Name: "auth", Client: authClient},
		{Name: "order", Client: authsdk.NewSDKClientWithHTTP(app.cfg.OrderURL, app.client)},
	}
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return nil
}
