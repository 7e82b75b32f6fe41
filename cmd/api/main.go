package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"baitlab/internal/api"
	"baitlab/internal/api/handlers"
	"baitlab/internal/config"
	"baitlab/internal/domain/services"
	"baitlab/internal/domain/services/ai"
	"baitlab/internal/domain/services/detection"
	"baitlab/internal/domain/services/dialogue"
	"baitlab/internal/domain/services/intel"
	"baitlab/internal/domain/services/textnorm"
	"baitlab/internal/grpc/healthcheck"
	"baitlab/internal/infrastructure/cache"
	"baitlab/internal/infrastructure/database"
	"baitlab/internal/infrastructure/database/repository"
	"baitlab/internal/reporting"
	"baitlab/internal/streaming"
	"baitlab/internal/telemetry"
	"baitlab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting BaitLab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis holds live sessions and is required. PostgreSQL archives
	// terminated engagements and is optional.
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisCache.Close()

	sessions := cache.NewSessionStore(redisCache, cfg.Session.TTL, log)

	var db *database.PostgresDB
	var engagementsRepo *repository.EngagementRepository
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without archive")
		} else {
			defer db.Close()
			engagementsRepo = repository.NewEngagementRepository(db.Pool())
			if err := engagementsRepo.Migrate(ctx); err != nil {
				log.Warn().Err(err).Msg("engagement archive migration failed")
				engagementsRepo = nil
			} else {
				log.Info().Msg("engagement archive initialized")
			}
		}
	}

	// Initialize streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without real-time streaming")
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	eventBus := streaming.NewEventBus(natsPublisher, log)
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	wsHub := streaming.NewWebSocketHub(natsPublisher, log)
	go wsHub.Run(ctx)

	eventPublisher := streaming.NewEventBusPublisher(eventBus, wsHub)

	// Initialize LLM client and analyzer
	llmClient := ai.NewClient(cfg.LLM, log)
	analyzer := ai.NewAnalyzer(cfg.LLM, llmClient, redisCache, log)
	log.Info().Bool("llm_available", llmClient.Available()).Msg("analyzer initialized")

	// Initialize pipeline services
	expander := textnorm.NewExpander(cfg.Expander, log)
	canonicalizer := textnorm.New(expander, log)
	detector := detection.New(cfg.Detection, analyzer, log)
	extractor := intel.NewExtractor(llmClient, log)

	machine := dialogue.NewMachine(cfg.Dialogue)
	behaviors := dialogue.NewBehaviors(nil)
	responder := dialogue.NewResponder(analyzer, behaviors, machine, log)

	reporter := reporting.New(cfg.Reporting, log)
	metrics := telemetry.New()

	// Lifetime counters outlive restarts in Redis.
	mirror := telemetry.NewMirror(metrics, redisCache, 30*time.Second, log)
	go mirror.Run(ctx)

	var archiver services.SessionArchiver
	if engagementsRepo != nil {
		archiver = engagementsRepo
	}

	engagement := services.NewEngagement(
		sessions,
		canonicalizer,
		detector,
		extractor,
		machine,
		responder,
		reporter,
		eventPublisher,
		archiver,
		metrics,
		log,
	)

	// Initialize handlers
	deps := handlers.Dependencies{
		Engagement:    engagement,
		Canonicalizer: canonicalizer,
		Detector:      detector,
		Extractor:     extractor,
		Cache:         redisCache,
		DB:            db,
		EngagementsDB: engagementsRepo,
		WSHub:         wsHub,
		EventBus:      eventBus,
		Metrics:       metrics,
		Mirror:        mirror,
		Version:       cfg.App.Version,
		Logger:        log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server (health checks for orchestration probes)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthcheck.RegisterHealthServer(ctx, grpcServer, db, redisCache)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	eventBus.Close()
	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Info().Msg("shutdown complete")
}
