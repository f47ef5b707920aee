package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	handler "github.com/aws-samples/sample-genai-sign-language-translator/internal/delivery/http"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/publisher"
	registryredis "github.com/aws-samples/sample-genai-sign-language-translator/internal/registry/redis"
	resultsredis "github.com/aws-samples/sample-genai-sign-language-translator/internal/results/redis"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/session"
	sessionpg "github.com/aws-samples/sample-genai-sign-language-translator/internal/session/postgres"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting GenASL API Server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL (connection store)
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis (execution registry + result bus)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Initialize RabbitMQ publisher
	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	// Initialize stores and bus
	reg := registryredis.NewRedisRegistry(rdb, cfg.Engine.RegistryTTL)
	connStore := sessionpg.NewPostgresConnectionStore(dbPool)
	bus := resultsredis.NewRedisBus(rdb, logger)

	// Initialize use cases
	submitUC := usecase.NewSubmitTranslationUsecase(reg, pub, logger)
	pollUC := usecase.NewPollTranslationUsecase(reg, logger)
	speechUC := usecase.NewSynthesizeSpeechUsecase(stage.NewHTTPClient(cfg.Stages), logger)

	// Initialize session manager and start its result subscription
	manager := session.NewManager(connStore, submitUC, bus, logger)
	manager.Start(ctx)

	// Initialize router
	router := handler.NewRouter(&handler.RouterDeps{
		SubmitUC:        submitUC,
		PollUC:          pollUC,
		SpeechUC:        speechUC,
		SessionManager:  manager,
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
