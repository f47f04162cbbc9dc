package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecoach/internal/api"
	"codecoach/internal/app/service"
	"codecoach/internal/domain/repository"
	"codecoach/internal/platform/cache"
	"codecoach/internal/platform/config"
	"codecoach/internal/platform/database"
	"codecoach/internal/platform/llm"
	"codecoach/internal/platform/logger"
	"codecoach/internal/platform/sandbox"

	"github.com/gammazero/workerpool"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("development", "info")
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")

	// 3. Initialize Redis (optional)
	rdb, err := cache.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	var sharedCache cache.Cache
	if rdb != nil {
		defer rdb.Close()
		sharedCache = cache.NewRedisCache(rdb, cache.KeyPrefix)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	}

	// 4. Initialize Repositories
	questionRepo := repository.NewQuestionStore(db, sharedCache, cfg.QuestionCacheTTL, log)
	solveRepo := repository.NewSolveRecordRepository(db)
	weaknessRepo := repository.NewWeaknessRepository(db)

	// 5. Initialize Platform Clients
	var executor sandbox.Executor = sandbox.NewPistonClient(sandbox.PistonConfig{
		URL:           cfg.PistonURL,
		Timeout:       cfg.SandboxTimeout,
		MaxConcurrent: cfg.SandboxMaxConcurrent,
	}, log)
	if sharedCache != nil && cfg.SandboxCacheTTL > 0 {
		executor = sandbox.NewCachedExecutor(executor, sharedCache, cfg.SandboxCacheTTL, log)
	}

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.LLMProvider).Msg("failed to create completion provider")
	}
	log.Info().Str("provider", cfg.LLMProvider).Str("model", provider.ModelID()).Msg("completion provider ready")

	var pool *workerpool.WorkerPool
	if cfg.GradingConcurrency > 1 {
		pool = workerpool.New(cfg.GradingConcurrency)
		defer pool.StopWait()
	}

	// 6. Initialize Services
	gradingService := service.NewGradingService(executor, solveRepo, pool, log)
	questionService := service.NewQuestionService(questionRepo, solveRepo, log)
	feedbackService := service.NewFeedbackService(provider, weaknessRepo, service.FeedbackOptions{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	}, log)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(log, gradingService, questionService, feedbackService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // outlives the completion call
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.APIPort).Msg("could not listen")
		}
	}()

	<-stop

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return
	}
	log.Info().Msg("server stopped gracefully")
}
