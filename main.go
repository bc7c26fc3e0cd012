package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"loan-payoff/config"
	"loan-payoff/events"
	"loan-payoff/events/kafka"
	httpLayer "loan-payoff/http"
	"loan-payoff/logging"
	"loan-payoff/repository"
	"loan-payoff/service"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json, toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (repository.CacheRepository, func()) {
	if cfg.Cache.Backend != "redis" {
		return repository.NewMemoryCache(), func() {}
	}

	redisCache := repository.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using in-memory cache", "addr", cfg.Redis.Addr, "err", err)
		redisCache.Close()
		return repository.NewMemoryCache(), func() {}
	}
	return redisCache, func() { redisCache.Close() }
}

func newPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.KafkaEnabled() {
		return events.NopPublisher{}, func() {}
	}
	p := kafka.NewPublisher(cfg.Kafka.Brokers)
	return p, func() { p.Close() }
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx := context.Background()

	cache, closeCache := newCache(ctx, cfg, logger)
	defer closeCache()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	summary := service.NewSummaryService(service.SummaryConfig{
		APIKey:  cfg.Summary.APIKey,
		APIURL:  cfg.Summary.APIURL,
		Model:   cfg.Summary.Model,
		Timeout: cfg.Summary.Timeout,
	}, logger)

	opts := service.DefaultOptions()
	opts.DefaultTermYears = cfg.Payoff.DefaultTermYears
	opts.Limits.MaxLoans = cfg.Payoff.MaxLoans
	opts.Limits.MaxTermYears = cfg.Payoff.MaxTermYears
	opts.CacheTTL = cfg.Cache.TTL

	payoffService := service.NewPayoffService(
		repository.NewPlanRepositoryMemory(cfg.Payoff.PlanHistory),
		cache,
		publisher,
		summary,
		logger,
		opts,
	)
	payoffHandler := httpLayer.NewPayoffHandler(payoffService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpLayer.NewRouter(payoffHandler, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening", "addr", server.Addr, "cache", cfg.Cache.Backend, "kafka", cfg.KafkaEnabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
