// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/wikity/internal/api"
	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/mcpserver"
	"github.com/starford/wikity/internal/pageservice"
	"github.com/starford/wikity/internal/site"
	"github.com/starford/wikity/internal/sse"
)

// Compile builds the site once. With WithWatch it then keeps recompiling
// on file changes until ctx is cancelled.
func Compile(ctx context.Context, opts ...Option) (site.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return site.Report{}, err
	}
	logger := app.logger

	ws, err := openWorkspace(app.config, logger)
	if err != nil {
		return site.Report{}, err
	}
	defer ws.Close()

	s := ws.newSite(nil)
	rep, err := s.Compile(ctx)
	if err != nil {
		return rep, err
	}
	logger.Info("Compile finished",
		slog.Int("compiled", rep.Compiled),
		slog.Int("skipped", rep.Skipped),
		slog.Int("removed", rep.Removed),
		slog.Int("failed", rep.Failed),
		slog.String("output", ws.outputDir()))

	if !app.watch {
		return rep, nil
	}
	if err := s.Watch(ctx, ws.store.Root()); err != nil && !errors.Is(err, context.Canceled) {
		return rep, fmt.Errorf("watch: %w", err)
	}
	return rep, nil
}

// ServeMCP indexes the site and serves MCP tools on stdin/stdout.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(app.config, app.logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := index.Sync(ws.db, ws.store, ws.engine, app.logger); err != nil {
		app.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := pageservice.NewService(ws.store, ws.db, ws.engine)
	return mcpserver.New(svc, app.version).ServeStdio()
}

// Run compiles the site and serves it with the API and live events until
// ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("site_root", cfg.Site.Root),
		slog.String("db_path", cfg.DBPath()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := openWorkspace(cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	s := ws.newSite(broker.PublishPageEvent)

	// Initial compile.
	rep, err := s.Compile(ctx)
	if err != nil {
		return fmt.Errorf("initial compile: %w", err)
	}
	logger.Info("Initial compile finished",
		slog.Int("compiled", rep.Compiled),
		slog.Int("skipped", rep.Skipped),
		slog.Int("failed", rep.Failed))

	svc := pageservice.NewService(ws.store, ws.db, ws.engine)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ws.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Compiled pages, images and stylesheet.
	r.Handle("/*", staticHandler(ws.outputDir(), !cfg.Auth.AuthEnabled()))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Recompile on file changes; the broker relays each page event.
	g.Go(func() error {
		if err := s.Watch(gCtx, ws.store.Root()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Streaming clients would otherwise hold Shutdown open.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
