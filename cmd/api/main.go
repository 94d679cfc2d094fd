package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/curesight/triage-platform/cmd/mainconfig"
	"github.com/curesight/triage-platform/internal/api/router"
	"github.com/curesight/triage-platform/internal/archive"
	"github.com/curesight/triage-platform/internal/auth"
	"github.com/curesight/triage-platform/internal/capability"
	appconfig "github.com/curesight/triage-platform/internal/config"
	"github.com/curesight/triage-platform/internal/http/handlers"
	"github.com/curesight/triage-platform/internal/notes"
	"github.com/curesight/triage-platform/internal/observability/metrics"
	"github.com/curesight/triage-platform/internal/policy"
	"github.com/curesight/triage-platform/internal/queries"
	"github.com/curesight/triage-platform/internal/triage"
	"github.com/curesight/triage-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting curesight triage API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.AdminTokenSecret == "" || cfg.AdminPassword == "" {
		logger.Error("ADMIN_TOKEN_SECRET and ADMIN_PASSWORD must be set")
		os.Exit(1)
	}
	authenticator := auth.NewHMACAuthenticator(cfg.AdminTokenSecret, cfg.AdminUsername, cfg.AdminPassword)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	policyStore := policy.NewStore(dynamoClient, cfg.PolicyTable, logger)
	engine := triage.NewEngine(policyStore, logger)
	queryStore := queries.NewStore(dynamoClient, cfg.QueriesTable, logger)

	triageMetrics := metrics.NewTriageMetrics(prometheus.DefaultRegisterer)

	// Redis-backed TTS cache. No speech engine is bundled; the cache still
	// serves previously stored audio.
	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	var speech capability.Synthesizer = capability.UnavailableSynthesizer{}
	if cfg.TTSProvider != "" {
		logger.Warn("unknown TTS provider, speech output disabled", "provider", cfg.TTSProvider)
	}
	synth := capability.NewCachedSynthesizer(redisClient, speech, logger, triageMetrics)

	var extractor capability.ImageExtractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := capability.NewGeminiImageExtractor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiVisionModel)
		if err != nil {
			logger.Error("failed to init gemini extractor", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		extractor = gemini
		logger.Info("image-to-text enabled", "model", cfg.GeminiVisionModel)
	}

	var noteStore handlers.NoteStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres connection", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		noteStore = notes.NewRepository(db)
		logger.Info("doctor notes storage enabled")
	}

	var exporter handlers.LogExporter
	if cfg.ArchiveBucket != "" {
		s3Client := s3.NewFromConfig(awsCfg)
		exporter = archive.NewExporter(queryStore, s3Client, cfg.ArchiveBucket, logger)
		logger.Info("archive export enabled", "bucket", cfg.ArchiveBucket)
	}

	routerCfg := &router.Config{
		Logger:             logger,
		Analyze:            handlers.NewAnalyzeHandler(engine, queryStore, extractor, nil, triageMetrics, logger),
		TTS:                handlers.NewTTSHandler(synth, logger),
		Admin:              handlers.NewAdminHandler(authenticator, policyStore, queryStore, noteStore, exporter, logger),
		Health:             handlers.NewHealthHandler(policyStore, logger),
		Auth:               authenticator,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSec:    cfg.RateLimitPerSec,
		RateLimitBurst:     cfg.RateLimitBurst,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
