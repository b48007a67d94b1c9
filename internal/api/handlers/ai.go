package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/internal/streaming"
	"fraudguard-lab/pkg/logger"
)

// trainingLockTTL bounds how long a crashed replica can hold the
// distributed training lock
const trainingLockTTL = 5 * time.Minute

// AIHandler serves the learned-model management endpoints
type AIHandler struct {
	service    *services.AIService
	cache      *cache.RedisCache
	publisher  *streaming.EventBusPublisher
	modelsPath string
	logger     *logger.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(service *services.AIService, c *cache.RedisCache, publisher *streaming.EventBusPublisher, modelsPath string, log *logger.Logger) *AIHandler {
	return &AIHandler{
		service:    service,
		cache:      c,
		publisher:  publisher,
		modelsPath: modelsPath,
		logger:     log.WithComponent("ai-handler"),
	}
}

// Status handles GET /api/ai/status
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Status())
}

// Train handles POST /api/ai/train
func (h *AIHandler) Train(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channel      models.Channel          `json:"channel"`
		TrainingData []models.TrainingSample `json:"training_data"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Channel == "" || len(req.TrainingData) == 0 {
		h.respondError(w, http.StatusBadRequest, "Missing channel or training data")
		return
	}

	if !req.Channel.IsValid() {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown channel: %s", req.Channel))
		return
	}

	// Distributed lock keeps concurrent replicas from training the same
	// channel at once. Without Redis the in-process guard still applies.
	if h.cache != nil {
		acquired, err := h.cache.AcquireTrainingLock(r.Context(), req.Channel.String(), trainingLockTTL)
		if err != nil {
			h.logger.Warn().Err(err).Msg("training lock unavailable, proceeding without it")
		} else if !acquired {
			h.respondError(w, http.StatusConflict, "training already in progress")
			return
		} else {
			defer func() {
				if err := h.cache.ReleaseTrainingLock(r.Context(), req.Channel.String()); err != nil {
					h.logger.Warn().Err(err).Msg("failed to release training lock")
				}
			}()
		}
	}

	perf, err := h.service.Train(req.Channel, req.TrainingData)

	if h.publisher != nil {
		h.publisher.PublishTrainingResult(r.Context(), req.Channel, perf, err)
	}

	if err != nil {
		if errors.Is(err, services.ErrTrainingInProgress) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("channel", req.Channel.String()).Msg("training failed")
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     fmt.Sprintf("Model %s trained successfully", req.Channel),
		"performance": perf,
	})
}

// Save handles POST /api/ai/save
func (h *AIHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SaveState(h.modelsPath); err != nil {
		h.logger.Error().Err(err).Str("path", h.modelsPath).Msg("failed to save model state")
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "Models saved successfully",
		"filepath": h.modelsPath,
	})
}

// Load handles POST /api/ai/load
func (h *AIHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LoadState(h.modelsPath); err != nil {
		h.logger.Error().Err(err).Str("path", h.modelsPath).Msg("failed to load model state")
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     "Models loaded successfully",
		"performance": h.service.Performance(),
	})
}

// respondJSON sends a JSON response
func (h *AIHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response
func (h *AIHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
