package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/daryeelcare/caafimaad-platform/cmd/mainconfig"
	"github.com/daryeelcare/caafimaad-platform/internal/chat"
	appconfig "github.com/daryeelcare/caafimaad-platform/internal/config"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chat worker", "queue", cfg.ChatQueueURL, "workers", cfg.WorkerCount)

	if cfg.ChatQueueURL == "" {
		logger.Error("CHAT_QUEUE_URL is required")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue := chat.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ChatQueueURL)
	jobStore := chat.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.ChatJobsTable, logger)

	llm, closeLLM, err := buildLLMClient(context.Background(), cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	if closeLLM != nil {
		defer closeLLM()
	}

	worker := chat.NewWorker(queue, jobStore, llm, cfg.BedrockModelID, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("chat worker stopped", "error", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down chat worker...")
	cancel()
	wg.Wait()
	logger.Info("chat worker stopped")
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (chat.LLMClient, func(), error) {
	var primary, fallback chat.LLMClient
	var closeFn func()

	if cfg.BedrockModelID != "" {
		primary = chat.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = gemini.Close() }
		fallback = gemini
	}

	switch {
	case primary != nil && fallback != nil:
		return chat.NewFallbackLLMClient(primary, fallback, logger), closeFn, nil
	case primary != nil:
		return primary, nil, nil
	case fallback != nil:
		return fallback, closeFn, nil
	default:
		return nil, nil, errors.New("no LLM backend configured: set BEDROCK_MODEL_ID or GEMINI_API_KEY")
	}
}
