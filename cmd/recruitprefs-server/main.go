// Package main is the entry point for the recruitprefs-server application.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/recruitprefs"
	"github.com/CreativeUnicorns/recruitprefs/api"
	"github.com/CreativeUnicorns/recruitprefs/cache"
	"github.com/CreativeUnicorns/recruitprefs/config"
	"github.com/CreativeUnicorns/recruitprefs/notify"
	"github.com/CreativeUnicorns/recruitprefs/security"
	"github.com/CreativeUnicorns/recruitprefs/storage"
)

func main() {
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides "+config.EnvListenAddress+")")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides "+config.EnvLogLevel+")")
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	logger := recruitprefs.NewDefaultLogger()
	config.LoadEnv(logger, *envFile)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddress = *listenAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.SetLevel(recruitprefs.ParseLogLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *recruitprefs.SlogLogger) error {
	logger.Info("Recruitprefs server starting up...",
		"storage", cfg.StorageDriver,
		"cache", cfg.CacheDriver,
		"rate_limiter", cfg.RateLimiter,
	)

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, "storage", store)

	var redisClient redis.UniversalClient
	if cfg.CacheDriver == "redis" || cfg.RateLimiter == "redis" {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer closeQuietly(logger, "redis", rc)
		redisClient = rc.Client()
	}

	opts := []recruitprefs.ManagerOption{
		recruitprefs.WithStorage(store),
		recruitprefs.WithLogger(logger),
		recruitprefs.WithCatalog(catalog),
	}

	switch cfg.CacheDriver {
	case "memory":
		mc := cache.NewMemoryCache()
		defer closeQuietly(logger, "cache", mc)
		opts = append(opts, recruitprefs.WithCache(mc))
	case "redis":
		opts = append(opts, recruitprefs.WithCache(cache.NewRedisCacheWithClient(redisClient, cache.DefaultKeyPrefix)))
	}

	limits := security.LimiterConfig{
		MaxAttempts: cfg.RateLimitMax,
		Window:      cfg.RateLimitWindow,
		Cooldown:    cfg.RateLimitCooldown,
	}
	switch cfg.RateLimiter {
	case "memory":
		ml := security.NewMemoryLimiter(limits)
		defer closeQuietly(logger, "rate limiter", ml)
		opts = append(opts, recruitprefs.WithRateLimiter(ml))
	case "redis":
		opts = append(opts, recruitprefs.WithRateLimiter(security.NewRedisLimiter(redisClient, limits, "")))
	}

	if cfg.Encrypt {
		enc, err := recruitprefs.NewEncryptionAdapter()
		if err != nil {
			return fmt.Errorf("encryption enabled but key is unusable: %w", err)
		}
		opts = append(opts, recruitprefs.WithEncryption(enc))
	}

	if cfg.DiscordWebhookURL != "" {
		n, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL, "")
		if err != nil {
			return err
		}
		opts = append(opts, recruitprefs.WithNotifier(n))
	}

	mgr := recruitprefs.New(opts...)

	sessions, err := recruitprefs.NewSessions(catalog, cfg.SessionTTL)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, "sessions", sessions)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiServer, err := api.NewServer(api.Config{
		ListenAddress: cfg.ListenAddress,
		Manager:       mgr,
		Sessions:      sessions,
		Logger:        logger,
		Metrics:       api.NewMetrics(reg),
		Gatherer:      reg,
		AdminToken:    cfg.AdminToken,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server exited gracefully")
	return nil
}

func openStorage(cfg config.Config) (recruitprefs.Storage, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.SQLitePath)
	case "postgres":
		return storage.NewPostgresStorage(cfg.PostgresDSN)
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func closeQuietly(logger recruitprefs.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("Failed to close "+name, "error", err)
	}
}
