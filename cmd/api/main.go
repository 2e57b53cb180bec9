package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/custody_gateway/internal/config"
	"github.com/congo-pay/custody_gateway/internal/events"
	"github.com/congo-pay/custody_gateway/internal/infra"
	"github.com/congo-pay/custody_gateway/internal/logging"
	"github.com/congo-pay/custody_gateway/internal/notification"
	"github.com/congo-pay/custody_gateway/internal/routes"
	"github.com/congo-pay/custody_gateway/internal/server"
	"github.com/congo-pay/custody_gateway/internal/wallet"
	"github.com/congo-pay/custody_gateway/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)

	ctx := context.Background()

	var db *pgxpool.Pool
	store := events.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgStore := events.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Error("migrate event store", "error", err)
			os.Exit(1)
		}
		store = pgStore
	} else {
		logger.Warn("DATABASE_URL not set, custody events are kept in memory")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	gateway, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Error("build gateway", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(routes.Deps{
		Cfg:      cfg,
		DB:       db,
		Cache:    cache,
		Logger:   logger,
		Gateway:  gateway,
		Store:    store,
		Notifier: notification.NewLoggerNotifier(logger),
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// buildGateway creates the wallet gateway and applies the settings file when
// one is configured. Without a file the gateway waits for PUT /api/v1/settings.
func buildGateway(cfg config.Config, logger *slog.Logger) (*wallet.Gateway, error) {
	unit, err := wallet.ParseAmountUnit(cfg.WebhookAmountUnit)
	if err != nil {
		return nil, err
	}

	features := wallet.DefaultFeatures()
	var file *wallet.File
	if cfg.SettingsFile != "" {
		f, err := wallet.LoadFile(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		features = f.Features
		file = &f
	}

	gateway := wallet.NewGateway(features,
		wallet.WithKeyProvider(webhook.EnvKeyProvider{Name: webhook.PublicKeyEnv}),
		wallet.WithAmountUnit(unit),
		wallet.WithAuthToken(cfg.CustodyToken),
		wallet.WithLogger(logger),
	)
	if file != nil {
		if err := gateway.Configure(file.Settings); err != nil {
			return nil, fmt.Errorf("apply %s: %w", cfg.SettingsFile, err)
		}
	}
	return gateway, nil
}
