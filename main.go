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

	"loan-advisor/config"
	httpLayer "loan-advisor/http"
	"loan-advisor/logger"
	"loan-advisor/repository"
	"loan-advisor/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", map[string]interface{}{"error": err})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()

	source, closeSource, err := newLoanSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	dataset := repository.NewLoanDataset(source)
	if records, err := dataset.Load(ctx); err != nil {
		// Scoring and chat still work without data; stats endpoints answer 503.
		log.Warn("Dataset not loaded, data features disabled", map[string]interface{}{
			"source": source.Name(),
			"error":  err,
		})
	} else {
		log.Info("Dataset loaded", map[string]interface{}{
			"source":  source.Name(),
			"records": len(records),
		})
	}

	cache, closeCache := newCache(ctx, cfg, log)
	defer closeCache()

	stats := service.NewStatisticsService(dataset, cache, cfg.Cache.TTL(),
		log.With(map[string]interface{}{"component": "statistics"}))

	narrative := service.NewNarrativeService(newTextProducer(ctx, cfg, log),
		log.With(map[string]interface{}{"component": "narrative"}))
	log.Info("Narrative backend selected", map[string]interface{}{
		"mode":    narrative.Mode(),
		"backend": narrative.Backend(),
	})

	advisor := service.NewAdvisorService(service.NewScoringService(), narrative, stats,
		log.With(map[string]interface{}{"component": "advisor"}))

	sessions := service.NewSessionStore(narrative, stats, cfg.Session.IdleTTL(),
		log.With(map[string]interface{}{"component": "chat"}))
	defer sessions.Stop()

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill())
	defer rateLimiter.Stop()

	handler := httpLayer.NewRouter(httpLayer.Handlers{
		Loan:    httpLayer.NewLoanHandler(advisor),
		Dataset: httpLayer.NewDatasetHandler(dataset, stats, cfg.Dataset.SampleSize, log.With(map[string]interface{}{"component": "dataset"})),
		Chat:    httpLayer.NewChatHandler(sessions),
		Health:  httpLayer.NewHealthHandler(dataset, narrative),
	}, rateLimiter, log.With(map[string]interface{}{"component": "http"}))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Loan advisor listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("start server: %w", err)
	case <-quit:
		log.Info("Shutting down server", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server exited", nil)
	return nil
}

func newLoanSource(cfg *config.Config) (repository.LoanDataSource, func(), error) {
	if cfg.Dataset.Source != config.SourcePostgres {
		return repository.NewCSVLoanSource(cfg.Dataset.Path), func() {}, nil
	}

	db, err := repository.OpenPostgres(cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	source, err := repository.NewPostgresLoanSource(db, cfg.Postgres.Table)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return source, func() { db.Close() }, nil
}

// newCache prefers Redis when configured and falls back to memory if Redis
// does not answer.
func newCache(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.CacheRepository, func()) {
	if cfg.Cache.Driver != config.CacheRedis {
		return repository.NewMemoryCache(), func() {}
	}

	redisCache := repository.NewRedisCache(cfg.Cache.Redis.Address, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Warn("Redis unavailable, using in-memory stats cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
			"error":   err,
		})
		redisCache.Close()
		return repository.NewMemoryCache(), func() {}
	}

	return redisCache, func() { redisCache.Close() }
}

// newTextProducer returns nil for fallback-only mode. In auto mode the
// generative backend is used only if it answers a ping at startup.
func newTextProducer(ctx context.Context, cfg *config.Config, log logger.Logger) service.TextProducer {
	if cfg.Narrative.Mode == config.ModeFallback {
		return nil
	}

	client := service.NewOllamaClient(service.OllamaConfig{
		BaseURL:     cfg.Narrative.BaseURL,
		Model:       cfg.Narrative.Model,
		Temperature: cfg.Narrative.Temperature,
		MaxTokens:   cfg.Narrative.MaxTokens,
		Timeout:     cfg.Narrative.Timeout(),
	})

	if cfg.Narrative.Mode == config.ModeAuto {
		if err := client.Ping(ctx); err != nil {
			log.Warn("Generative backend not reachable, using fallback responses", map[string]interface{}{
				"base_url": cfg.Narrative.BaseURL,
				"error":    err,
			})
			return nil
		}
	}
	return client
}
