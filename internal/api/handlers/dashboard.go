package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/internal/domain/services"
	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/internal/infrastructure/database/repository"
	"fraudguard-lab/pkg/logger"
)

// dashboardCacheTTL bounds staleness of the cached dashboard payloads.
// Writes invalidate eagerly, the TTL only covers missed invalidations.
const dashboardCacheTTL = 30 * time.Second

// recentAlertCount is the alert window the dashboard shows
const recentAlertCount = 20

// DashboardHandler serves the dashboard read endpoints
type DashboardHandler struct {
	engine  *services.ProcessingEngine
	cache   *cache.RedisCache
	archive *repository.AlertRepository
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(engine *services.ProcessingEngine, c *cache.RedisCache, archive *repository.AlertRepository, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		engine:  engine,
		cache:   c,
		archive: archive,
		logger:  log.WithComponent("dashboard-handler"),
	}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached map[string]int64
		if err := h.cache.GetCachedDashboard(r.Context(), cache.KeyDashboardStats, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	stats := h.engine.Stats()

	if h.cache != nil {
		_ = h.cache.CacheDashboard(r.Context(), cache.KeyDashboardStats, stats, dashboardCacheTTL)
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// Alerts handles GET /api/dashboard/alerts
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.RecentAlerts()

	// After a restart the in-memory window is empty; the archive keeps
	// the dashboard continuous
	if len(alerts) == 0 && h.archive != nil {
		archived, err := h.archive.Recent(r.Context(), recentAlertCount)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read alert archive")
		} else {
			alerts = archived
		}
	}

	if alerts == nil {
		alerts = []*models.Alert{}
	}

	h.respondJSON(w, http.StatusOK, alerts)
}

// Trend handles GET /api/dashboard/trend
func (h *DashboardHandler) Trend(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached []models.TrendPoint
		if err := h.cache.GetCachedDashboard(r.Context(), cache.KeyDashboardTrend, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	trend := h.engine.Trend()

	if h.cache != nil {
		_ = h.cache.CacheDashboard(r.Context(), cache.KeyDashboardTrend, trend, dashboardCacheTTL)
	}

	h.respondJSON(w, http.StatusOK, trend)
}

// Distribution handles GET /api/dashboard/distribution
func (h *DashboardHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached []models.ChannelCount
		if err := h.cache.GetCachedDashboard(r.Context(), cache.KeyDashboardDistribution, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	dist := h.engine.Distribution()

	if len(dist) == 0 && h.archive != nil {
		counts, err := h.archive.CountByChannel(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read alert archive")
		} else {
			for _, channel := range models.AllChannels() {
				if count, ok := counts[channel]; ok {
					dist = append(dist, models.ChannelCount{
						Name:  channel.DisplayName(),
						Value: count,
					})
				}
			}
		}
	}

	if h.cache != nil {
		_ = h.cache.CacheDashboard(r.Context(), cache.KeyDashboardDistribution, dist, dashboardCacheTTL)
	}

	h.respondJSON(w, http.StatusOK, dist)
}

// respondJSON sends a JSON response
func (h *DashboardHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}
