package handlers

import (
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/internal/infrastructure/database"
	"fraudguard-lab/internal/infrastructure/database/repository"
	"fraudguard-lab/internal/streaming"
	"fraudguard-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Analysis  *AnalysisHandler
	Dashboard *DashboardHandler
	AI        *AIHandler
	NLP       *NLPHandler
	Streaming *StreamingHandler
}

// Dependencies holds dependencies for handlers. Cache, DB, Archive,
// Publisher, WSHub and EventBus are optional; the handlers degrade to
// in-memory behavior when they are nil.
type Dependencies struct {
	Engine     *services.ProcessingEngine
	AI         *services.AIService
	NLP        *services.NLPAnalyzer
	Cache      *cache.RedisCache
	DB         *database.PostgresDB
	Archive    *repository.AlertRepository
	Publisher  *streaming.EventBusPublisher
	WSHub      *streaming.WebSocketHub
	EventBus   *streaming.EventBus
	Version    string
	ModelsPath string
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Cache, deps.DB, deps.Logger),
		Analysis:  NewAnalysisHandler(deps.Engine, deps.Cache, deps.Logger),
		Dashboard: NewDashboardHandler(deps.Engine, deps.Cache, deps.Archive, deps.Logger),
		AI:        NewAIHandler(deps.AI, deps.Cache, deps.Publisher, deps.ModelsPath, deps.Logger),
		NLP:       NewNLPHandler(deps.NLP, deps.Logger),
		Streaming: NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}
