package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	amqpdelivery "github.com/aws-samples/sample-genai-sign-language-translator/internal/delivery/amqp"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/engine"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/pool"
	registryredis "github.com/aws-samples/sample-genai-sign-language-translator/internal/registry/redis"
	resultsredis "github.com/aws-samples/sample-genai-sign-language-translator/internal/results/redis"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting GenASL Translation Worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Redis
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Invalid Redis URL", zap.Error(err))
	}
	redisClient := goredis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize registry, result bus, and workflow runner
	reg := registryredis.NewRedisRegistry(redisClient, cfg.Engine.RegistryTTL)
	bus := resultsredis.NewRedisBus(redisClient, logger)
	stages := stage.NewHTTPClient(cfg.Stages)
	runner := engine.NewRunner(stages, reg, cfg.Engine, logger)

	// Initialize use case
	runUC := usecase.NewRunTranslationUsecase(runner, bus, logger)

	// Create buffered job channel
	jobsChan := make(chan *domain.JobMessage, cfg.Worker.PoolSize*2)

	// Initialize AMQP consumer
	consumer, err := amqpdelivery.NewConsumer(cfg.RabbitMQ.URL, jobsChan, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer consumer.Close()
	logger.Info("Connected to RabbitMQ")

	// Start worker pool
	workerPool := pool.NewWorkerPool(cfg.Worker.PoolSize, jobsChan, runUC, logger)
	workerPool.Start(ctx)

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("Consumer stopped with error", zap.Error(err))
		}
	}()

	// Expose Prometheus metrics
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	workerPool.Stop()

	logger.Info("Worker stopped")
}
