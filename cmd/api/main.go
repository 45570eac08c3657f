package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/daryeelcare/caafimaad-platform/cmd/mainconfig"
	"github.com/daryeelcare/caafimaad-platform/internal/api/router"
	"github.com/daryeelcare/caafimaad-platform/internal/articles"
	"github.com/daryeelcare/caafimaad-platform/internal/bookings"
	"github.com/daryeelcare/caafimaad-platform/internal/chat"
	appconfig "github.com/daryeelcare/caafimaad-platform/internal/config"
	"github.com/daryeelcare/caafimaad-platform/internal/contacts"
	"github.com/daryeelcare/caafimaad-platform/internal/doctors"
	"github.com/daryeelcare/caafimaad-platform/internal/http/handlers"
	"github.com/daryeelcare/caafimaad-platform/internal/messages"
	"github.com/daryeelcare/caafimaad-platform/internal/notify"
	"github.com/daryeelcare/caafimaad-platform/internal/observability/metrics"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
	"github.com/daryeelcare/caafimaad-platform/internal/storage"
	"github.com/daryeelcare/caafimaad-platform/internal/users"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

func main() {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting caafimaad-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Separate read-only handle for dashboard aggregates.
	reportingDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open reporting database", "error", err)
		os.Exit(1)
	}
	defer reportingDB.Close()
	reportingDB.SetMaxOpenConns(4)

	location, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "tz", cfg.ClinicTimezone, "error", err)
		os.Exit(1)
	}

	// Repositories.
	bookingsRepo := bookings.NewRepository(pool)
	doctorsRepo := doctors.NewRepository(pool)
	articlesRepo := articles.NewRepository(pool)
	usersRepo := users.NewRepository(pool)
	messagesRepo := messages.NewRepository(pool)
	contactsRepo := contacts.NewPostgresRepository(pool)

	// Availability slot cache is optional and degrades to direct reads.
	var slotCache *bookings.SlotCache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		slotCache = bookings.NewSlotCache(redis.NewClient(opts), cfg.SlotCacheTTL, logger)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	bookingMetrics := metrics.NewBookingMetrics(registry)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Booking notifications.
	var emailSender notify.EmailSender
	if cfg.SendGridAPIKey != "" {
		emailSender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifyService := notify.NewService(emailSender, logger)

	template := bookings.Template{
		OpensAt:     cfg.ClinicOpensAt,
		ClosesAt:    cfg.ClinicClosesAt,
		SlotMinutes: cfg.SlotMinutes,
	}
	resolver := bookings.NewResolver(doctorsRepo, bookingsRepo, template, slotCache, location, logger)
	processor := payments.NewSimulatedProcessor(cfg.BookingFee, logger)
	bookingService := bookings.NewService(
		bookingsRepo, resolver, processor, notifyService,
		bookingMetrics, cfg.BookingFee, location, logger,
	)

	// Doctor profile images.
	var imageStore storage.BlobStore
	if cfg.DoctorImageBucket != "" {
		imageStore = storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.DoctorImageBucket, logger)
	} else {
		imageStore = storage.NewMemoryStore()
	}

	// Chat pipeline. The memory queue runs the worker in-process; SQS
	// expects the chat-worker binary.
	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	jobStore := chat.NewJobStore(dynamoClient, cfg.ChatJobsTable, logger)

	var chatHandler *chat.Handler
	if cfg.UseMemoryQueue {
		queue := chat.NewMemoryQueue(64)
		publisher := chat.NewPublisher(queue, jobStore, logger)
		chatHandler = chat.NewHandler(publisher, jobStore, logger)

		llm, closeLLM, err := buildLLMClient(ctx, cfg, awsCfg, logger)
		if err != nil {
			logger.Error("failed to build LLM client", "error", err)
			os.Exit(1)
		}
		if closeLLM != nil {
			defer closeLLM()
		}
		worker := chat.NewWorker(queue, jobStore, llm, cfg.BedrockModelID, logger)
		for i := 0; i < cfg.WorkerCount; i++ {
			go func() {
				if err := worker.Run(ctx); err != nil {
					logger.Error("chat worker stopped", "error", err)
				}
			}()
		}
	} else if cfg.ChatQueueURL != "" {
		queue := chat.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ChatQueueURL)
		publisher := chat.NewPublisher(queue, jobStore, logger)
		chatHandler = chat.NewHandler(publisher, jobStore, logger)
	} else {
		logger.Warn("chat disabled: no queue configured")
	}

	routerCfg := &router.Config{
		Logger:             logger,
		BookingsHandler:    bookings.NewHandler(bookingService, logger),
		DoctorsHandler:     doctors.NewHandler(doctorsRepo, imageStore, logger),
		ArticlesHandler:    articles.NewHandler(articlesRepo, logger),
		ContactsHandler:    contacts.NewHandler(contactsRepo, logger),
		UsersHandler:       users.NewHandler(usersRepo, logger),
		MessagesHandler:    messages.NewHandler(messagesRepo, logger),
		ChatHandler:        chatHandler,
		AdminDashboard:     handlers.NewAdminDashboardHandler(reportingDB, logger),
		JWTSecret:          cfg.JWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRateLimit:    10,
		PublicRateBurst:    30,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient wires the Bedrock/Gemini completion stack from config.
// Bedrock is the primary model; Gemini takes over on failure or when
// Bedrock is not configured. The returned close function releases the
// Gemini connection when one was opened.
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
