package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/orussy/online-menu/pkg/cache"
	"github.com/orussy/online-menu/pkg/catalog"
	"github.com/orussy/online-menu/pkg/config"
	"github.com/orussy/online-menu/pkg/logging"
	"github.com/orussy/online-menu/pkg/menu"
	"github.com/orussy/online-menu/pkg/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.Setup(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	store := cache.New(redisClient)

	catalogClient, err := catalog.New(catalog.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Cache:   store,
		TTL:     cfg.CacheTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog client")
	}

	overrides, err := cfg.LoadOverrides()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load override configuration")
	}

	resolver := pricing.NewResolver(catalogClient, overrides, cfg.Currency)
	menuService := menu.NewService(catalogClient, resolver, overrides)

	srv := &server{
		menu:    menuService,
		store:   store,
		catalog: catalogClient,
		secret:  cfg.SyncSecret,
		ttl:     cfg.CacheTTL.Hours(),
		logger:  logger,
	}

	// Background maintenance: reclaim stale entries hourly, re-warm the
	// category cache before it goes stale.
	scheduler := cron.New()
	_, _ = scheduler.AddFunc("@every 1h", func() {
		store.SweepExpired(context.Background())
	})
	_, _ = scheduler.AddFunc("@every 4h", func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_ = catalogClient.Refresh(warmCtx)
	})
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Starting menu server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown error")
	}
	_ = redisClient.Close()
}
