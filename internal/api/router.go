package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fraudguard-lab/internal/api/handlers"
	apimiddleware "fraudguard-lab/internal/api/middleware"
	"fraudguard-lab/internal/config"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Health and smoke-test routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
		pub.Get("/test", r.handlers.Health.Test)
	})

	// Channel analysis. The static multi_modal route takes precedence
	// over the {channel} wildcard.
	router.Route("/analyze", func(an chi.Router) {
		an.Post("/multi_modal", r.handlers.Analysis.MultiModal)
		an.Post("/{channel}", r.handlers.Analysis.Analyze)
	})

	router.Route("/api", func(api chi.Router) {
		// Dashboard endpoints
		api.Route("/dashboard", func(dash chi.Router) {
			dash.Get("/stats", r.handlers.Dashboard.Stats)
			dash.Get("/alerts", r.handlers.Dashboard.Alerts)
			dash.Get("/trend", r.handlers.Dashboard.Trend)
			dash.Get("/distribution", r.handlers.Dashboard.Distribution)
		})

		// Model management endpoints
		api.Route("/ai", func(ai chi.Router) {
			ai.Get("/status", r.handlers.AI.Status)
			ai.Post("/train", r.handlers.AI.Train)
			ai.Post("/save", r.handlers.AI.Save)
			ai.Post("/load", r.handlers.AI.Load)
		})

		// Standalone NLP endpoints
		api.Route("/nlp", func(nlp chi.Router) {
			nlp.Post("/analyze", r.handlers.NLP.Analyze)
			nlp.Post("/compare", r.handlers.NLP.Compare)
		})

		api.Get("/streaming/stats", r.handlers.Streaming.GetStats)
	})

	// WebSocket streaming endpoint (real-time alert feed for dashboards)
	router.Get("/ws/alerts", r.handlers.Streaming.HandleWebSocket)

	return router
}
