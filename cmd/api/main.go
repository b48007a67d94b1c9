package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"fraudguard-lab/internal/api"
	"fraudguard-lab/internal/api/handlers"
	"fraudguard-lab/internal/config"
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/internal/grpc/healthprobe"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/internal/infrastructure/database"
	"fraudguard-lab/internal/infrastructure/database/repository"
	"fraudguard-lab/internal/streaming"
	"fraudguard-lab/pkg/logger"
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
		Msg("starting FraudGuard Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure. Both stores are optional; the platform
	// serves from in-memory state when they are absent.
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Alert archive (if database available)
	var alertRepo *repository.AlertRepository
	if db != nil {
		alertRepo = repository.NewAlertRepository(db.Pool())
		if err := alertRepo.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to prepare alert archive schema, continuing without archive")
			alertRepo = nil
		} else {
			log.Info().Msg("alert archive initialized")
		}
	} else {
		log.Warn().Msg("running without database - alert archive unavailable")
	}

	// Initialize streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		var err error
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without durable streaming")
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	// Create event bus for real-time updates
	eventBus := streaming.NewEventBus(natsPublisher, log)
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	// Create WebSocket hub for dashboard real-time updates
	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	// Initialize the analysis pipeline
	patterns := services.NewPatternLibrary(log)

	var sentiment services.SentimentScorer
	if cfg.AI.Sentiment {
		sentiment = services.NewLexiconSentimentScorer()
	}
	profiler := services.NewTextProfiler(patterns, sentiment, log)
	extractor := services.NewFeatureExtractor(patterns, profiler, log)
	rules := services.NewRuleScorer(log)

	aiService := services.NewAIService(services.AIServiceConfig{
		Forest: services.RandomForestConfig{
			NumTrees:       cfg.AI.Trees,
			MaxDepth:       cfg.AI.MaxDepth,
			MinSamplesLeaf: cfg.AI.MinSamplesLeaf,
			Seed:           cfg.AI.Seed,
		},
	}, extractor, rules, log)

	alertGen := services.NewAlertGenerator(log)
	engine := services.NewProcessingEngine(services.EngineConfig{
		AlertHistoryLimit: cfg.Engine.AlertHistoryLimit,
		RecentAlerts:      cfg.Engine.RecentAlerts,
		ProfileLimit:      cfg.Engine.ProfileLimit,
	}, extractor, aiService, alertGen, log)

	nlpAnalyzer := services.NewNLPAnalyzer(profiler, log)

	// Restore trained models from the last save
	if cfg.AI.AutoLoad {
		if err := aiService.LoadState(cfg.AI.ModelsPath); err != nil {
			log.Warn().Err(err).Str("path", cfg.AI.ModelsPath).Msg("failed to restore model state")
		}
	}

	// Wire alert sinks before serving traffic
	if alertRepo != nil {
		engine.AddSink(repository.NewArchiveSink(alertRepo, log))
	}
	eventPublisher := streaming.NewEventBusPublisher(eventBus, wsHub)
	engine.AddSink(eventPublisher)

	// Initialize handlers
	deps := handlers.Dependencies{
		Engine:     engine,
		AI:         aiService,
		NLP:        nlpAnalyzer,
		Cache:      redisCache,
		DB:         db,
		Archive:    alertRepo,
		Publisher:  eventPublisher,
		WSHub:      wsHub,
		EventBus:   eventBus,
		Version:    cfg.App.Version,
		ModelsPath: cfg.AI.ModelsPath,
		Logger:     log,
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

	// Start gRPC server (health probes for orchestrators)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthprobe.RegisterHealthServer(ctx, grpcServer, db, redisCache)

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

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop gRPC server
	grpcServer.GracefulStop()

	// Stop HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Drain local subscribers and close NATS
	eventBus.Close()

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
