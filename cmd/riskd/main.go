package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veridianid/risk-engine/internal/application/usecase"
	"github.com/veridianid/risk-engine/internal/domain/policy"
	"github.com/veridianid/risk-engine/internal/domain/service"
	"github.com/veridianid/risk-engine/internal/infrastructure/bureau"
	"github.com/veridianid/risk-engine/internal/infrastructure/config"
	"github.com/veridianid/risk-engine/internal/infrastructure/messaging"
	pgRepo "github.com/veridianid/risk-engine/internal/infrastructure/postgres"
	"github.com/veridianid/risk-engine/internal/infrastructure/policyfile"
	"github.com/veridianid/risk-engine/internal/infrastructure/recorder"
	grpcPresentation "github.com/veridianid/risk-engine/internal/presentation/grpc"
	"github.com/veridianid/risk-engine/internal/presentation/rest"
	"github.com/veridianid/risk-engine/pkg/auth"
	pkgkafka "github.com/veridianid/risk-engine/pkg/kafka"
	"github.com/veridianid/risk-engine/pkg/observability"
	pkgpostgres "github.com/veridianid/risk-engine/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load .env for local development; the file is optional.
	_ = godotenv.Load()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  "json",
		Service: cfg.ServiceName,
	})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting risk-engine",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing.
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Metrics exporter.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	migDSN := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}.DSN()
	if migErr := pkgpostgres.RunMigrations(migDSN, "file://internal/infrastructure/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Load the engine policy document. Weights, thresholds, policy tables
	// and regional profiles are all validated at parse time.
	settings, err := policyfile.Load(cfg.EnginePolicyFile)
	if err != nil {
		logger.Error("failed to load engine policy document", "error", err, "path", cfg.EnginePolicyFile)
		os.Exit(1)
	}

	// Wire infrastructure adapters.
	historyRepo := pgRepo.NewHistoryRepository(pool)
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)
	bureauClient := bureau.NewStubClient(logger)

	asyncRecorder := recorder.NewAsyncRecorder(historyRepo, recorder.DefaultQueueSize, logger)
	asyncRecorder.Start()
	defer asyncRecorder.Close()

	// Wire domain services.
	registry, err := policyfile.BuildRegistry(settings, bureauClient)
	if err != nil {
		logger.Error("failed to build evaluator registry", "error", err)
		os.Exit(1)
	}
	aggregator, err := service.NewAggregator(settings.Aggregator)
	if err != nil {
		logger.Error("failed to build aggregator", "error", err)
		os.Exit(1)
	}
	resolver, err := policy.NewResolver(settings.Policies)
	if err != nil {
		logger.Error("failed to build policy resolver", "error", err)
		os.Exit(1)
	}

	// Wire use cases.
	evaluateUC := usecase.NewEvaluateRisk(
		registry, aggregator, resolver,
		asyncRecorder, publisher,
		settings.EvaluatorTimeout, logger,
	)
	trendsUC := usecase.NewGetTrustTrends(historyRepo)
	anomalyUC := usecase.NewGetAnomalyFrequency(historyRepo)
	purgeUC := usecase.NewPurgeHistory(historyRepo, logger)

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtCfg := auth.JWTConfig{
		Issuer: getEnv("JWT_ISSUER", "veridian-gateway"),
	}
	switch {
	case os.Getenv("JWT_PUBLIC_KEY") != "":
		jwtCfg.PublicKeyPEM = os.Getenv("JWT_PUBLIC_KEY")
	case os.Getenv("JWT_PUBLIC_KEY_FILE") != "":
		keyData, loadErr := auth.LoadKeyFromFile(os.Getenv("JWT_PUBLIC_KEY_FILE"))
		if loadErr != nil {
			logger.Error("failed to load JWT public key file", "error", loadErr)
			os.Exit(1)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = getEnv("JWT_SECRET", "dev-secret")
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	handler := grpcPresentation.NewRiskServiceHandler(evaluateUC, trendsUC, anomalyUC, purgeUC, logger)
	grpcServer := grpcPresentation.NewServer(handler, cfg.GRPCAddr(), logger, jwtSvc)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(pool, logger)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("risk-engine started",
		"grpc_address", cfg.GRPCAddr(),
		"http_address", cfg.HTTPAddr(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down risk-engine")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("risk-engine stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
