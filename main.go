package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"stuntify/config"
	httpLayer "stuntify/http"
	"stuntify/logging"
	"stuntify/metrics"
	"stuntify/model"
	"stuntify/repository"
	"stuntify/service"
)

const version = "1.0.1"

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the YAML config file")
	showVersion := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("gateway stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Artifacts must load before the listener opens; a gateway without them
	// never accepts traffic.
	artifacts, err := model.LoadArtifacts(cfg.ArtifactFiles())
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}
	logger.Info("artifacts loaded",
		zap.String("dir", cfg.Artifacts.Dir),
		zap.String("fingerprint", artifacts.Fingerprint),
		zap.Strings("categories", artifacts.Encoder.Classes()),
		zap.Strings("labels", artifacts.Decoder.Labels()),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	cache, closeCache, err := buildCache(cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	predictionService := service.NewPredictionService(artifacts, cache, m, logger)

	var limiter *httpLayer.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = httpLayer.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		defer limiter.Stop()
	}

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpLayer.NewRouter(httpLayer.RouterConfig{
			Service:        predictionService,
			Metrics:        m,
			Gatherer:       reg,
			Logger:         logger,
			Limiter:        limiter,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Version:        version,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("gateway exited")
	return nil
}

// buildCache assembles the prediction cache from config. It returns a nil
// cache when both tiers are disabled.
func buildCache(cfg config.CacheConfig, logger *zap.Logger) (repository.CacheRepository, func(), error) {
	noop := func() {}

	var near repository.CacheRepository
	if cfg.LRUSize > 0 {
		lruCache, err := repository.NewLRUCache(cfg.LRUSize)
		if err != nil {
			return nil, noop, fmt.Errorf("lru cache: %w", err)
		}
		near = lruCache
	}

	if !cfg.Redis.Enabled {
		return near, noop, nil
	}

	redisCache := repository.NewRedisCache(repository.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
		Timeout:  cfg.Redis.Timeout,
	})
	if err := redisCache.Ping(context.Background()); err != nil {
		// Unreachable Redis only degrades to cache misses.
		logger.Warn("redis cache unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	closeRedis := func() {
		if err := redisCache.Close(); err != nil {
			logger.Warn("closing redis cache", zap.Error(err))
		}
	}

	if near == nil {
		return redisCache, closeRedis, nil
	}
	return repository.NewTieredCache(near, redisCache), closeRedis, nil
}
