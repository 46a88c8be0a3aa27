package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/events"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Format: cfg.LogFormat, Component: log.ComponentApp})
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	db, err := storage.NewDB(cfg.DBPath, storage.WithScopedNameLookup(cfg.ScopedNameLookup))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.WithComponent(log.ComponentStorage).Info("Database ready", "path", cfg.DBPath, log.FieldOperation, log.OpStartup)

	if err := bootstrapAdmin(ctx, db, cfg, logger); err != nil {
		return err
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	h := handlers.NewHandlers(db, publisher, handlers.Config{
		SecureCookie:    cfg.SecureCookie,
		SessionDuration: cfg.SessionDuration,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           setupRouter(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "addr", srv.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepSessions(gctx, db, cfg.SessionSweepInterval, logger.WithComponent(log.ComponentSweeper))
		return nil
	})

	return g.Wait()
}

func setupRouter(h *handlers.Handlers, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	h.Register(mux)

	return log.Middleware(logger.WithComponent(log.ComponentHTTP))(mux)
}

// newPublisher connects to the broker when one is configured. The server
// keeps running without events if the broker is unreachable.
func newPublisher(cfg *config.Config, logger *log.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.WithComponent(log.ComponentEvents).Warn("AMQP unavailable, expense events disabled", log.FieldError, err)
		return events.NopPublisher{}
	}
	logger.WithComponent(log.ComponentEvents).Info("Publishing expense events", "exchange", cfg.AMQPExchange)
	return p
}

// bootstrapAdmin creates the configured account when the database has no
// users yet.
func bootstrapAdmin(ctx context.Context, db *storage.DB, cfg *config.Config, logger *log.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	count, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := db.CreateUser(ctx, models.User{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("Created initial user", log.FieldUserID, user.ID, "email", user.Email)
	return nil
}

// sweepSessions deletes expired sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, db *storage.DB, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.CleanExpiredSessions(ctx)
			if err != nil {
				logger.Warn("Failed to clean expired sessions", log.FieldError, err)
				continue
			}
			if n > 0 {
				logger.Debug("Removed expired sessions", "count", n)
			}
		}
	}
}
