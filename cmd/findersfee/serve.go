package main

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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/findersfee/internal/api"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
	"github.com/erazemk/findersfee/internal/config"
	"github.com/erazemk/findersfee/internal/db"
	"github.com/erazemk/findersfee/internal/gate"
	"github.com/erazemk/findersfee/internal/logging"
	"github.com/erazemk/findersfee/internal/notify"
	"github.com/erazemk/findersfee/internal/payments"
	"github.com/erazemk/findersfee/internal/photos"
	"github.com/erazemk/findersfee/internal/registry"
	"github.com/erazemk/findersfee/internal/stats"
	"github.com/erazemk/findersfee/internal/store"
)

const purgeInterval = time.Hour

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize on first run.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()
		printInitResult(cfg.DBPath, cfg.AdminEmail, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	secret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading signing secret: %w", err)
	}

	roles := auth.NewRoleResolver(database)
	items := registry.New(database, roles, logging.New("registry"))
	notifier := notify.New(database, logging.New("notify"))
	engine := claims.New(database, items, notifier, roles, logging.New("claims"))
	pay := payments.New(database, &payments.SimulatedProvider{}, items, roles, cfg.PlatformFee, logging.New("payments"))

	router := api.NewRouter(api.Services{
		Auth:     auth.NewProvider(database, secret, cfg.TokenTTL, logging.New("auth")),
		Roles:    roles,
		Items:    items,
		Claims:   engine,
		Gate:     gate.NewResolver(items, engine, pay),
		Notify:   notifier,
		Payments: pay,
		Photos:   photos.New(database, cfg.PhotoCacheSize, cfg.PhotoCacheTTL, logging.New("photos")),
		Stats:    stats.New(database, roles, cfg.PlatformFee),
	}, api.Options{
		Logger:     logging.New("http"),
		LoginRate:  cfg.LoginRate,
		LoginBurst: cfg.LoginBurst,
		Metrics:    cfg.Metrics,
	})

	return serve(ctx, cfg, router, func(ctx context.Context) {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		if err != nil {
			slog.Error("purging revoked tokens", "error", err)
			return
		}
		if n > 0 {
			slog.Info("purged expired revoked tokens", "count", n)
		}
	})
}

// serve runs the HTTP server and the periodic housekeeping until ctx is done,
// then shuts the server down gracefully.
func serve(ctx context.Context, cfg config.Config, handler http.Handler, housekeeping func(context.Context)) error {
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				housekeeping(gctx)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped, closing database")
	return nil
}
