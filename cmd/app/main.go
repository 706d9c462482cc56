package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"diet-planner-api/internal/config"
	aiAdapters "diet-planner-api/internal/infra/adapters/ai"
	pg "diet-planner-api/internal/infra/db/postgres"
	"diet-planner-api/internal/infra/logging"
	"diet-planner-api/internal/infra/metrics"
	red "diet-planner-api/internal/infra/redis"
	"diet-planner-api/internal/infra/web"
	"diet-planner-api/internal/infra/worker"
	"diet-planner-api/internal/usecase"

	"diet-planner-api/internal/domain/ports/adapter"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories & queue ----
	tm := pg.NewTxManager(pool)
	queue := pg.NewJobQueue(pool, tm, pg.QueueOptions{
		LeaseTTL:    cfg.Queue.LeaseTTL.Std(),
		MaxAttempts: cfg.Queue.MaxAttempts,
		Retention:   cfg.Queue.Retention.Std(),
		SweepEvery:  cfg.Queue.SweepEvery.Std(),
	}, logger)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL.Std())
	profileRepo := pg.NewProfileRepo(pool)

	// ---- AI provider (Gemini -> OpenAI -> none) ----
	var provider adapter.TextGenerator
	providerName := "none"
	if cfg.AI.GeminiKey != "" {
		provider, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		providerName = "gemini"
	} else if cfg.AI.OpenAIKey != "" {
		provider, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		providerName = "openai"
	} else {
		// Supported mode: every job gets the deterministic template plan.
		logger.Warn().Msg("no AI provider configured; serving template plans only")
	}
	logger.Info().Str("provider", providerName).Str("model", cfg.AI.DefaultModel).Msg("generation provider selected")

	// ---- Use cases ----
	generator := usecase.NewPlanGenerator(provider, providerName, cfg.AI.Timeout.Std(), logger)
	dietUC := usecase.NewDietUseCase(queue, planRepo, profileRepo, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo)

	// ---- Queue janitor ----
	go queue.StartJanitor(ctx)

	// ---- Workers ----
	if cfg.Worker.Count > 0 {
		pool := worker.NewPool(cfg.Worker.Count, logger)
		pool.Start(ctx)
		defer pool.Stop()

		processor := worker.NewDietJobProcessor(queue, planRepo, generator, cfg.Worker.PollInterval.Std(), logger)
		go processor.Start(ctx, pool)
	} else {
		logger.Info().Msg("worker.count is 0; running as API-only node")
	}

	// ---- HTTP server ----
	srv := web.NewServer(dietUC, profileUC, rateLimiter, cfg.Server.APIKey, cfg.Server.RateEvery.Std(), logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Shutdown(context.Background())
}
