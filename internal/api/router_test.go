package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudguard-lab/internal/api/handlers"
	"fraudguard-lab/internal/config"
	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/pkg/logger"
)

// newTestRouter wires the full in-memory stack behind the real route
// table: no Redis, no Postgres, no NATS, no WebSocket hub.
func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	log := logger.NewNop()

	patterns := services.NewPatternLibrary(log)
	profiler := services.NewTextProfiler(patterns, services.NewLexiconSentimentScorer(), log)
	extractor := services.NewFeatureExtractor(patterns, profiler, log)
	ai := services.NewAIService(services.DefaultAIServiceConfig(), extractor, services.NewRuleScorer(log), log)
	engine := services.NewProcessingEngine(services.EngineConfig{}, extractor, ai, services.NewAlertGenerator(log), log)

	modelsPath := filepath.Join(t.TempDir(), "state.json")
	h := handlers.NewHandlers(handlers.Dependencies{
		Engine:     engine,
		AI:         ai,
		NLP:        services.NewNLPAnalyzer(profiler, log),
		Version:    "test",
		ModelsPath: modelsPath,
		Logger:     log,
	})

	cfg, err := config.Load("")
	require.NoError(t, err)

	return NewRouter(*cfg, h, nil, log).Setup(), modelsPath
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

func TestRouterHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.HealthResponse
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "test", resp.Version)
		assert.NotEmpty(t, resp.Uptime)
		assert.Nil(t, resp.Checks)
	})

	t.Run("ready without optional deps", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/ready", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.HealthResponse
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "not configured", resp.Checks["redis"])
		assert.Equal(t, "not configured", resp.Checks["postgres"])
		assert.Equal(t, "healthy", resp.Checks["engine"])
	})

	t.Run("smoke test", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/test", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status     string           `json:"status"`
			Message    string           `json:"message"`
			Channels   []models.Channel `json:"channels"`
			AdvancedAI bool             `json:"advanced_ai"`
		}
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "OK", resp.Status)
		assert.Equal(t, "Omni-Channel AI Scam & Fraud Detection Platform is running!", resp.Message)
		assert.Equal(t, models.AllChannels(), resp.Channels)
		assert.True(t, resp.AdvancedAI)
	})
}

func TestRouterAnalyze(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("phishing email", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/email", map[string]any{
			"content": "URGENT legal action: your account is suspended and blocked. Verify your bank password now",
			"sender":  "noreply@security-verify.example",
			"subject": "Urgent action required: account suspended",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result models.AnalysisResult
		decodeJSON(t, rec, &result)
		assert.Equal(t, models.ChannelEmail, result.Channel)
		assert.Equal(t, 1.0, result.RiskScore)
		assert.Equal(t, models.ThreatLevelCritical, result.ThreatLevel)
		require.NotNil(t, result.Alert)
		assert.Equal(t, "Phishing attempt detected with 100.0% confidence", result.Alert.Description)
		assert.Empty(t, result.Error)
	})

	t.Run("unknown channel", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/carrier_pigeon", map[string]any{"content": "x"})
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "unknown channel: carrier_pigeon", resp["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/email", []byte("{not json"))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "invalid request body", resp["error"])
	})

	t.Run("null record", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/email", []byte("null"))
		require.Equal(t, http.StatusOK, rec.Code)

		var result models.AnalysisResult
		decodeJSON(t, rec, &result)
		assert.Equal(t, "no data provided", result.Error)
		assert.Nil(t, result.Alert)
	})
}

func TestRouterMultiModal(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("fused analysis", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/multi_modal", map[string]any{
			"channels": []string{"email", "messaging"},
			"data": map[string]any{
				"email": map[string]any{
					"content": "URGENT legal action: your account is suspended and blocked. Verify your bank password now",
				},
				"messaging": map[string]any{"content": "lunch tomorrow?"},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result models.FusionResult
		decodeJSON(t, rec, &result)
		require.Len(t, result.ChannelResults, 2)
		assert.Equal(t, 1.0, result.ChannelResults[models.ChannelEmail].RiskScore)
		assert.Equal(t, 0.35, result.FusedRiskScore)
		assert.Equal(t, models.ThreatLevelLow, result.OverallThreatLevel)
	})

	t.Run("no usable channels", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/analyze/multi_modal", map[string]any{
			"channels": []string{"email"},
			"data":     map[string]any{},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "No valid channels provided", resp["error"])
	})
}

func TestRouterDashboard(t *testing.T) {
	router, _ := newTestRouter(t)

	// Fresh instance: no counters, an empty JSON array of alerts, a flat
	// trend.
	rec := doRequest(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int64
	decodeJSON(t, rec, &stats)
	assert.Empty(t, stats)

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/distribution", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	doRequest(t, router, http.MethodPost, "/analyze/email", map[string]any{"content": "hello there, lunch tomorrow?"})

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	decodeJSON(t, rec, &stats)
	assert.Equal(t, int64(1), stats["email_alerts"])
	assert.Equal(t, int64(1), stats["total_alerts"])

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/alerts", nil)
	var alerts []*models.Alert
	decodeJSON(t, rec, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.ChannelEmail, alerts[0].Channel)

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/trend", nil)
	var trend []models.TrendPoint
	decodeJSON(t, rec, &trend)
	assert.Len(t, trend, 24)

	rec = doRequest(t, router, http.MethodGet, "/api/dashboard/distribution", nil)
	var dist []models.ChannelCount
	decodeJSON(t, rec, &dist)
	assert.Equal(t, []models.ChannelCount{{Name: "Email", Value: 1}}, dist)
}

func trainingPayload() map[string]any {
	fraud := []string{
		"URGENT verify your bank account immediately or it will be suspended",
		"Your account has been suspended, confirm your password now",
		"Immediate action required: verify your payment details",
		"Final warning: your bank account will be terminated, verify now",
		"Security alert: confirm your account password immediately",
		"Urgent: suspended account requires immediate verification",
	}
	legit := []string{
		"Team lunch is on Friday at noon, see you there",
		"The quarterly report draft is attached for review",
		"Reminder: standup moved to ten tomorrow morning",
		"Thanks for the feedback on the design document",
		"The deploy went out cleanly last night",
		"Can we reschedule our one on one to Thursday",
	}

	samples := make([]models.TrainingSample, 0, len(fraud)+len(legit))
	for _, text := range fraud {
		samples = append(samples, models.TrainingSample{Data: models.Record{"content": text}, IsFraud: true})
	}
	for _, text := range legit {
		samples = append(samples, models.TrainingSample{Data: models.Record{"content": text}, IsFraud: false})
	}
	return map[string]any{"channel": "email", "training_data": samples}
}

func TestRouterAITraining(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("initial status", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/ai/status", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var status models.AIStatus
		decodeJSON(t, rec, &status)
		assert.True(t, status.AdvancedAIAvailable)
		assert.Equal(t, "advanced_ml_random", status.ActiveAISystem)
		assert.False(t, status.ModelsLoaded)
		assert.Empty(t, status.TrainedModels)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ai/train", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "Missing channel or training data", resp["error"])
	})

	t.Run("unknown channel", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ai/train", map[string]any{
			"channel":       "carrier_pigeon",
			"training_data": []models.TrainingSample{{Data: models.Record{"content": "x"}, IsFraud: true}},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "unknown channel: carrier_pigeon", resp["error"])
	})

	t.Run("train email", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ai/train", trainingPayload())
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status      string                  `json:"status"`
			Message     string                  `json:"message"`
			Performance models.ModelPerformance `json:"performance"`
		}
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "Model email trained successfully", resp.Message)
		assert.Equal(t, 12, resp.Performance.Samples)
		assert.Equal(t, 6, resp.Performance.FraudSamples)
		assert.Equal(t, "email_classifier", resp.Performance.ModelUsed)
	})

	t.Run("status after training", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/ai/status", nil)

		var status models.AIStatus
		decodeJSON(t, rec, &status)
		assert.Equal(t, "advanced_ml", status.ActiveAISystem)
		assert.True(t, status.ModelsLoaded)
		assert.Contains(t, status.TrainedModels, models.ChannelEmail)
	})
}

func TestRouterAISaveLoad(t *testing.T) {
	router, modelsPath := newTestRouter(t)

	t.Run("load tolerates a missing snapshot", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ai/load", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "Models loaded successfully", resp["message"])
	})

	t.Run("save writes the snapshot", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ai/save", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "Models saved successfully", resp["message"])
		assert.Equal(t, modelsPath, resp["filepath"])

		_, err := os.Stat(modelsPath)
		assert.NoError(t, err)
	})
}

func TestRouterNLP(t *testing.T) {
	router, _ := newTestRouter(t)
	scam := "URGENT: You owe the IRS $5,000. Pay the penalty now or face legal consequences! Call 555-123-4567."

	t.Run("no text", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/nlp/analyze", map[string]any{"text": ""})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "No text provided", resp["error"])
	})

	t.Run("analyze", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/nlp/analyze", map[string]any{"text": scam})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status       string             `json:"status"`
			AnalysisType string             `json:"analysis_type"`
			TextPreview  string             `json:"text_preview"`
			Analysis     models.NLPAnalysis `json:"analysis"`
		}
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "comprehensive", resp.AnalysisType)
		assert.Equal(t, scam, resp.TextPreview)
		assert.Equal(t, 7, resp.Analysis.FraudIndicators.TotalFraudIndicators)
		assert.Equal(t, 56.0, resp.Analysis.RiskAssessment.OverallNLPRisk)
		assert.Equal(t, models.ThreatLevelMedium, resp.Analysis.RiskLevel)
	})

	t.Run("long text preview is truncated", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/nlp/analyze", map[string]any{
			"text": strings.Repeat("a", 250),
			"type": "quick",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			AnalysisType string `json:"analysis_type"`
			TextPreview  string `json:"text_preview"`
		}
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "quick", resp.AnalysisType)
		assert.Len(t, []rune(resp.TextPreview), 203)
		assert.True(t, strings.HasSuffix(resp.TextPreview, "..."))
	})

	t.Run("compare needs two texts", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/nlp/compare", map[string]any{"texts": []string{"only one"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "At least 2 texts required for comparison", resp["error"])
	})

	t.Run("compare ranks texts", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/nlp/compare", map[string]any{
			"texts": []string{"The weather is lovely today.", scam, "Please verify your account before the deadline."},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Comparisons []models.NLPComparison `json:"comparisons"`
			TotalTexts  int                    `json:"total_texts"`
		}
		decodeJSON(t, rec, &resp)
		assert.Equal(t, 3, resp.TotalTexts)
		require.Len(t, resp.Comparisons, 3)
		assert.Equal(t, 2, resp.Comparisons[0].TextID)
		assert.Equal(t, 70.0, resp.Comparisons[0].RiskScore)
		assert.Equal(t, 1, resp.Comparisons[2].TextID)
	})
}

func TestRouterStreamingEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("stats without hub", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/streaming/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats map[string]int
		decodeJSON(t, rec, &stats)
		assert.Zero(t, stats["websocket_clients"])
		assert.Zero(t, stats["event_bus_subscribers"])
	})

	t.Run("websocket unavailable without hub", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/ws/alerts", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
