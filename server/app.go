package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/minus-twelve/relay"
	"github.com/minus-twelve/relay/repository"
	"github.com/minus-twelve/relay/router"
	"github.com/minus-twelve/relay/types"
)

// App owns the HTTP server and everything that must be shut down with it.
type App struct {
	httpServer *http.Server
	sessions   *relay.SessionManager
	limiter    *relay.RateLimiter
	db         *repository.DB
	store      relay.Store
	logger     *slog.Logger
}

func NewApp(ctx context.Context, cfg types.Config, logger *slog.Logger) (*App, error) {
	store, err := relay.CreateStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	logger.Info("session store ready", "type", cfg.StoreType)

	db, err := repository.Open(ctx, cfg.Database.Path)
	if err != nil {
		closeStore(store)
		return nil, err
	}
	logger.Info("database ready", "path", cfg.Database.Path)

	sessions := relay.NewManager(store, cfg.Session, relay.WithLogger(logger))
	limiter := relay.NewRateLimiter(cfg.Security.RateLimit)
	limiter.Start(cfg.Security.RateLimit.Period)

	rt := router.Default(router.Deps{
		Widgets: db.Widgets(),
		Users:   db.Users(),
	}, logger)

	srv, err := New(sessions, rt, Options{
		TrustedProxies: cfg.Server.TrustedProxies,
		Limiter:        limiter,
		Logger:         logger,
	})
	if err != nil {
		limiter.Stop()
		sessions.Close()
		db.Close()
		closeStore(store)
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: srv.Handler(),
		},
		sessions: sessions,
		limiter:  limiter,
		db:       db,
		store:    store,
		logger:   logger,
	}, nil
}

func (a *App) Addr() string {
	return a.httpServer.Addr
}

// Run blocks until the server stops. A graceful shutdown is not an error.
func (a *App) Run() error {
	err := a.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains HTTP first, then stops the sweep and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	a.limiter.Stop()
	if err := a.sessions.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	if err := closeStore(a.store); err != nil {
		errs = append(errs, fmt.Errorf("session store close: %w", err))
	}
	return errors.Join(errs...)
}

func closeStore(store relay.Store) error {
	if c, ok := store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
