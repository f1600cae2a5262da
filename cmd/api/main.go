package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/agri-assist-api/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/agri-assist-api/internal/adapter/kafka"
	"github.com/couchcryptid/agri-assist-api/internal/adapter/mapbox"
	"github.com/couchcryptid/agri-assist-api/internal/config"
	"github.com/couchcryptid/agri-assist-api/internal/domain"
	"github.com/couchcryptid/agri-assist-api/internal/observability"
	"github.com/couchcryptid/agri-assist-api/internal/pipeline"
	"github.com/couchcryptid/agri-assist-api/internal/store"
)

// publishQueueFactor sizes the publish queue in multiples of BATCH_SIZE.
const publishQueueFactor = 20

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ref := domain.DefaultReferenceData()
	if cfg.ReferenceDataPath != "" {
		ref, err = domain.LoadReferenceData(cfg.ReferenceDataPath)
		if err != nil {
			logger.Error("failed to load reference data", "path", cfg.ReferenceDataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("reference data loaded", "path", cfg.ReferenceDataPath,
			"locations", len(ref.Locations), "crops", len(ref.BaseYields), "cities", len(ref.Cities))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Submission log: SQLite when a path is configured, memory otherwise.
	var submissions store.SubmissionStore
	if cfg.SubmissionsDBPath != "" {
		db, err := store.OpenSQLite(ctx, cfg.SubmissionsDBPath)
		if err != nil {
			logger.Error("failed to open submissions database", "path", cfg.SubmissionsDBPath, "error", err)
			os.Exit(1)
		}
		submissions = db
		logger.Info("submission log persisted to sqlite", "path", cfg.SubmissionsDBPath)
	} else {
		submissions = store.NewMemoryStore()
		logger.Info("submission log kept in memory")
	}
	existing, err := submissions.Count(ctx)
	if err != nil {
		logger.Error("failed to read submission log", "error", err)
		os.Exit(1)
	}
	logger.Info("submission log ready", "submissions", existing, "next_id", existing+1)

	// Optional Kafka publishing of stored submissions.
	var (
		writer    *kafkaadapter.Writer
		publisher *pipeline.Pipeline
	)
	if cfg.KafkaEnabled {
		if cfg.KafkaCreateTopic {
			if err := kafkaadapter.EnsureTopic(ctx, cfg.KafkaBrokers[0], cfg.KafkaSubmissionsTopic, 1); err != nil {
				logger.Warn("could not create submissions topic", "topic", cfg.KafkaSubmissionsTopic, "error", err)
			}
		}
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval, cfg.BatchSize*publishQueueFactor)
		submissions = pipeline.NewPublishingStore(submissions, publisher)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSubmissionsTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	// Initialize place resolver (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var resolver domain.PlaceResolver
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		resolver = mapbox.NewCachedResolver(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox reverse geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox reverse geocoding disabled")
	}

	seed := uint64(time.Now().UnixNano())
	weather := domain.NewWeatherSynthesizer(ref, rand.New(rand.NewPCG(seed, seed>>1)), resolver, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Dependencies{
		Reference:      ref,
		Submissions:    submissions,
		Weather:        weather,
		WeatherAPIKey:  cfg.WeatherAPIKey,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start submission publisher. It outlives the signal context so requests
	// still finishing during srv.Shutdown can enqueue.
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()
	publisherDone := make(chan struct{})
	if publisher != nil {
		go func() {
			defer close(publisherDone)
			if err := publisher.Run(publisherCtx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	} else {
		close(publisherDone)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	stopPublisher()

	select {
	case <-publisherDone:
	case <-shutdownCtx.Done():
		logger.Warn("publisher did not drain before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := submissions.Close(); err != nil {
		logger.Error("submission store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
