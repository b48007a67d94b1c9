package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/pkg/logger"
)

// previewLimit is how much of the submitted text is echoed back
const previewLimit = 200

// NLPHandler serves the standalone text-analysis endpoints
type NLPHandler struct {
	analyzer *services.NLPAnalyzer
	logger   *logger.Logger
}

// NewNLPHandler creates a new NLP handler
func NewNLPHandler(analyzer *services.NLPAnalyzer, log *logger.Logger) *NLPHandler {
	return &NLPHandler{
		analyzer: analyzer,
		logger:   log.WithComponent("nlp-handler"),
	}
}

// Analyze handles POST /api/nlp/analyze
func (h *NLPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "No text provided")
		return
	}

	analysisType := req.Type
	if analysisType == "" {
		analysisType = "comprehensive"
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"analysis_type": analysisType,
		"text_preview":  services.Preview(req.Text, previewLimit),
		"analysis":      h.analyzer.Analyze(req.Text),
		"timestamp":     time.Now(),
	})
}

// Compare handles POST /api/nlp/compare
func (h *NLPHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts []string `json:"texts"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Texts) < 2 {
		h.respondError(w, http.StatusBadRequest, "At least 2 texts required for comparison")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"comparisons": h.analyzer.Compare(req.Texts),
		"total_texts": len(req.Texts),
		"timestamp":   time.Now(),
	})
}

// respondJSON sends a JSON response
func (h *NLPHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response
func (h *NLPHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
