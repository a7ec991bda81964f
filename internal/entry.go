// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/diary/internal/account"
	"github.com/starford/diary/internal/api"
	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/index"
	"github.com/starford/diary/internal/journal"
	"github.com/starford/diary/internal/mcpserver"
	"github.com/starford/diary/internal/sse"
	"github.com/starford/diary/internal/storage"
)

// Version is reported by the CLI and the MCP server.
const Version = "0.1.0"

const monthLayout = "2006-01"

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// runtime holds the components shared by every command.
type runtime struct {
	store *storage.FS
	db    *index.DB
	cal   *calendar.Calendar
}

// open prepares the vault, opens the index and brings it up to date.
// The caller closes rt.db.
func open(cfg *Config, logger *slog.Logger) (*runtime, error) {
	cal, err := cfg.Calendar.Build()
	if err != nil {
		return nil, err
	}

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, cal.Location(), logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &runtime{store: store, db: db, cal: cal}, nil
}

// Run starts the HTTP server, file watcher and event stream.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("timezone", cfg.Calendar.Timezone),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := open(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	sess, err := account.Open(rt.store)
	if err != nil {
		return fmt.Errorf("init account: %w", err)
	}
	if sess.FirstLaunch() {
		logger.Info("No account yet, waiting for setup via POST /api/account")
	}

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.CalendarThrottle)
	defer broker.Close()

	svc := journal.NewService(rt.store, rt.db, rt.cal, journal.WithNotifier(broker.PublishEntryEvent))
	apiRouter := api.NewRouter(svc, sess, cfg.Auth.API(), broker)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api; this includes /api/events.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	watcher := index.NewWatcher(rt.db, rt.store, rt.store.Root(), rt.cal.Location(), logger, broker.PublishEntryEvent)
	g.Go(func() error {
		if err := watcher.Run(gCtx); err != nil {
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

		// Closing the broker ends open SSE streams so Shutdown can finish.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)
	slog.SetDefault(logger)

	rt, err := open(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := journal.NewService(rt.store, rt.db, rt.cal)
	logger.Info("MCP server starting on stdio", slog.String("vault_path", app.config.Vault.Path))
	return mcpserver.New(svc, Version).ServeStdio()
}

// PrintCalendar writes the month grid for month (YYYY-MM, empty for the
// current month), moved by delta months, to the configured output.
func PrintCalendar(ctx context.Context, month string, delta int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)

	rt, err := open(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := journal.NewService(rt.store, rt.db, rt.cal)
	ref := svc.Today()
	if month != "" {
		if ref, err = time.ParseInLocation(monthLayout, month, rt.cal.Location()); err != nil {
			return fmt.Errorf("month must be YYYY-MM: %w", err)
		}
	}

	view, err := svc.Month(ctx, svc.Navigate(ref, delta))
	if err != nil {
		return err
	}
	_, err = io.WriteString(app.out, journal.RenderMonth(view))
	return err
}
