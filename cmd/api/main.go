package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/config"
	"github.com/atxlegis/bill-analyzer/internal/fetcher"
	httpserver "github.com/atxlegis/bill-analyzer/internal/http"
	"github.com/atxlegis/bill-analyzer/internal/http/handlers"
	"github.com/atxlegis/bill-analyzer/internal/queue"
	"github.com/atxlegis/bill-analyzer/internal/repository"
	"github.com/atxlegis/bill-analyzer/internal/resolver"
	"github.com/atxlegis/bill-analyzer/internal/service"
	"github.com/atxlegis/bill-analyzer/internal/summarizer"
	"github.com/atxlegis/bill-analyzer/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[bill-analyzer] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analysisCache, cacheCloser := setupCache(ctx, cfg, logger)
	defer cacheCloser()

	repo, repoCloser := setupRepository(ctx, cfg, logger)
	defer repoCloser()

	producer, consumer, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	documentClient := resolver.NewDocumentHostClient()
	documentResolver := resolver.New(resolver.Config{
		BaseURL:      cfg.TeliconBaseURL,
		ProbeTimeout: time.Duration(cfg.ResolverProbeTimeoutMS) * time.Millisecond,
		HTTPClient:   documentClient,
		Logger:       logger,
	})
	documentFetcher := fetcher.New(fetcher.Config{
		BillTimeout:   time.Duration(cfg.BillFetchTimeoutMS) * time.Millisecond,
		FiscalTimeout: time.Duration(cfg.FiscalFetchTimeoutMS) * time.Millisecond,
		HTTPClient:    documentClient,
		Extractor:     fetcher.NewPDFExtractor(logger),
		Logger:        logger,
	})

	inferenceClient := summarizer.NewClient(summarizer.ClientConfig{
		BaseURL:    cfg.InferenceURL,
		APIKey:     cfg.InferenceKey,
		Model:      cfg.InferenceModelID,
		Timeout:    time.Duration(cfg.InferenceTimeoutMS) * time.Millisecond,
		MaxRetries: cfg.InferenceRetries,
	})
	fiscalSummarizer := summarizer.NewFiscalSummarizer(inferenceClient, logger)
	if !inferenceClient.Available() {
		logger.Printf("inference backend not configured, fiscal summaries degrade to raw excerpts")
	}

	jobsService := service.NewJobsService(repo, producer)
	analysisService := service.NewAnalysisService(service.AnalysisConfig{
		DefaultSession:          cfg.Session,
		CacheTTL:                time.Duration(cfg.CacheTTLSeconds) * time.Second,
		LockTTL:                 time.Duration(cfg.CacheLockTTLSeconds) * time.Second,
		AsyncSizeThresholdBytes: cfg.AsyncSizeThresholdBytes,
		AsyncForcedBills:        cfg.AsyncForcedBills,
	}, service.AnalysisDependencies{
		Resolver:   documentResolver,
		Fetcher:    documentFetcher,
		Summarizer: fiscalSummarizer,
		Cache:      analysisCache,
		Jobs:       jobsService,
		Logger:     logger,
	})

	api := handlers.NewAPI(handlers.APIConfig{
		Analysis:       analysisService,
		Jobs:           jobsService,
		Cache:          analysisCache,
		CacheTTL:       time.Duration(cfg.CacheTTLSeconds) * time.Second,
		DefaultSession: cfg.Session,
		Logger:         logger,
	})

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(consumer, repo, analysisService, logger)
		go processor.Start(ctx)
		logger.Printf("worker enabled and started")
	} else {
		logger.Printf("worker disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Synchronous analyses block on the document host and the
		// inference backend, so the write timeout stays generous.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupCache(ctx context.Context, cfg config.Config, logger *log.Logger) (cache.AnalysisCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using in-memory cache")
		return cache.NewMemoryCache(cfg.CacheMemoryMaxEntry), func() {}
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
	if err != nil {
		logger.Printf("failed to initialize redis cache, fallback to memory: %v", err)
		return cache.NewMemoryCache(cfg.CacheMemoryMaxEntry), func() {}
	}
	logger.Printf("redis cache initialized")
	return redisCache, func() {
		_ = redisCache.Close()
	}
}

func setupRepository(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (repository.JobsRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Printf("DATABASE_URL not configured, using in-memory repository")
		return repository.NewMemoryJobsRepository(), func() {}
	}

	pgRepo, err := repository.NewPostgresJobsRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Printf("failed to initialize postgres repository, fallback to memory: %v", err)
		return repository.NewMemoryJobsRepository(), func() {}
	}
	logger.Printf("postgres repository initialized")
	return pgRepo, func() {
		pgRepo.Close()
	}
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(512, logger)
		return local, local, func() {}
	}

	streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		Stream:      cfg.RedisStream,
		DLQStream:   cfg.RedisDLQ,
		Group:       cfg.RedisGroup,
		Consumer:    cfg.RedisConsumer,
		MaxAttempts: 3,
	})
	if err != nil {
		logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
		local := queue.NewLocalQueue(512, logger)
		return local, local, func() {}
	}
	logger.Printf("redis streams queue initialized")
	return streams, streams, func() {
		_ = streams.Close()
	}
}
