// Package app wires configuration, logging, the validator and the HTTP
// routes into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/optimode/mailverify"
	"github.com/optimode/mailverify/internal/config"
	"github.com/optimode/mailverify/internal/handler"
	"github.com/optimode/mailverify/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// App is the mailverify HTTP server.
type App struct {
	config  *config.Config
	router  *chi.Mux
	logger  *zap.Logger
	handler *handler.Handler
}

// NewApp creates the application around validator. A nil validator is
// replaced by one built from cfg.
func NewApp(cfg *config.Config, validator mailverify.AddressValidator, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = cfg.NewValidator(logger)
	}

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(validator, cfg, logger),
	}
	a.setupRoutes()
	return a, nil
}

func (a *App) setupRoutes() {
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.LoggerMiddleware(a.logger))

	a.router.Post("/validate", a.handler.HandleValidate)
	a.router.Post("/validate_bulk", a.handler.HandleValidateBulk)
	a.router.Get("/ping", a.handler.HandlePing)
}

// Router returns the configured routes.
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer returns an http.Server for the configured address. There is
// no write timeout: a bulk upload is answered only after every address
// has been probed.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := a.GetServer()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
