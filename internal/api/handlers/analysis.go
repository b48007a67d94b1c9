package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/pkg/logger"
)

// AnalysisHandler handles per-channel and multi-modal analysis requests
type AnalysisHandler struct {
	engine *services.ProcessingEngine
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(engine *services.ProcessingEngine, c *cache.RedisCache, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		engine: engine,
		cache:  c,
		logger: log.WithComponent("analysis-handler"),
	}
}

// Analyze handles POST /analyze/{channel}
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	channel := models.Channel(chi.URLParam(r, "channel"))
	if !channel.IsValid() {
		h.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown channel: %s", channel))
		return
	}

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.engine.Process(r.Context(), channel, record)

	if !result.Failed() {
		h.invalidateDashboard(r.Context())
	}

	h.respondJSON(w, http.StatusOK, result)
}

// MultiModal handles POST /analyze/multi_modal
func (h *AnalysisHandler) MultiModal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channels []models.Channel                 `json:"channels"`
		Data     map[models.Channel]models.Record `json:"data"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.ProcessMulti(r.Context(), req.Channels, req.Data)
	if err != nil {
		if errors.Is(err, services.ErrNoValidChannels) {
			h.respondError(w, http.StatusBadRequest, "No valid channels provided")
			return
		}
		h.logger.Error().Err(err).Msg("multi-modal analysis failed")
		h.respondError(w, http.StatusInternalServerError, "multi-modal analysis failed")
		return
	}

	h.invalidateDashboard(r.Context())
	h.respondJSON(w, http.StatusOK, result)
}

// invalidateDashboard drops cached dashboard payloads after state changed
func (h *AnalysisHandler) invalidateDashboard(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateDashboard(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

// respondJSON sends a JSON response
func (h *AnalysisHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response
func (h *AnalysisHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
