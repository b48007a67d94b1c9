package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// ErrNoValidChannels is returned by ProcessMulti when no requested
// channel has a matching record in the payload.
var ErrNoValidChannels = errors.New("no valid channels provided")

// fusionWeights weight each channel's contribution to the combined
// multi-modal score. Channels without a weight contribute nothing.
var fusionWeights = map[models.Channel]float64{
	models.ChannelEmail:       0.35,
	models.ChannelWebpage:     0.25,
	models.ChannelSocialMedia: 0.2,
	models.ChannelTransaction: 0.2,
}

// AlertSink receives every generated alert. Implementations must
// return quickly; slow delivery belongs behind a queue.
type AlertSink interface {
	PublishAlert(ctx context.Context, alert *models.Alert)
}

// EngineConfig bounds the engine's in-memory state
type EngineConfig struct {
	AlertHistoryLimit int
	RecentAlerts      int
	ProfileLimit      int
}

// DefaultEngineConfig returns default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AlertHistoryLimit: 1000,
		RecentAlerts:      20,
		ProfileLimit:      200,
	}
}

// ProcessingEngine runs the full analysis pipeline for every channel:
// extraction, scoring, threat assessment, alert generation, then the
// statistics and per-user profile bookkeeping. A Process call never
// fails outward; bad input comes back as an error-carrying result.
type ProcessingEngine struct {
	extractor *FeatureExtractor
	ai        *AIService
	alerts    *AlertGenerator
	sinks     []AlertSink

	mu             sync.RWMutex
	history        []*models.Alert
	counters       map[models.Channel]int64
	totalAlerts    int64
	highRiskAlerts int64
	profiles       map[string]map[models.Channel][]models.ProfileEntry

	historyLimit int
	recentLimit  int
	profileLimit int

	log *logger.Logger
}

// NewProcessingEngine creates the engine
func NewProcessingEngine(config EngineConfig, extractor *FeatureExtractor, ai *AIService, alerts *AlertGenerator, log *logger.Logger) *ProcessingEngine {
	defaults := DefaultEngineConfig()
	if config.AlertHistoryLimit <= 0 {
		config.AlertHistoryLimit = defaults.AlertHistoryLimit
	}
	if config.RecentAlerts <= 0 {
		config.RecentAlerts = defaults.RecentAlerts
	}
	if config.ProfileLimit <= 0 {
		config.ProfileLimit = defaults.ProfileLimit
	}

	return &ProcessingEngine{
		extractor:    extractor,
		ai:           ai,
		alerts:       alerts,
		counters:     make(map[models.Channel]int64),
		profiles:     make(map[string]map[models.Channel][]models.ProfileEntry),
		historyLimit: config.AlertHistoryLimit,
		recentLimit:  config.RecentAlerts,
		profileLimit: config.ProfileLimit,
		log:          log.WithComponent("processing-engine"),
	}
}

// AddSink registers an alert consumer. Not safe to call once traffic
// is flowing; wire sinks before serving.
func (e *ProcessingEngine) AddSink(sink AlertSink) {
	e.sinks = append(e.sinks, sink)
}

// Process analyzes one record end to end
func (e *ProcessingEngine) Process(ctx context.Context, channel models.Channel, record models.Record) models.AnalysisResult {
	now := time.Now()

	if !channel.IsValid() {
		return models.AnalysisResult{
			Channel:   channel,
			Timestamp: now,
			Error:     fmt.Sprintf("unknown channel: %s", channel),
		}
	}
	if record == nil {
		return models.AnalysisResult{
			Channel:   channel,
			Timestamp: now,
			Error:     "no data provided",
		}
	}

	ex := e.extractor.Extract(record, channel)
	risk := e.ai.Score(ex, channel)
	level := AssessThreatLevel(risk)

	alert := e.alerts.Generate(channel, risk, level, ex.Features, record.String("user_id", ""))
	e.record(alert, record.String("user_id", "unknown"), channel, ex.Features)

	for _, sink := range e.sinks {
		sink.PublishAlert(ctx, alert)
	}

	e.log.Info().
		Str("channel", channel.String()).
		Str("alert_id", alert.ID).
		Float64("risk_score", risk).
		Str("threat_level", level.String()).
		Msg("record analyzed")

	return models.AnalysisResult{
		Channel:     channel,
		RiskScore:   risk,
		ThreatLevel: level,
		Alert:       alert,
		Features:    ex.Features,
		Timestamp:   now,
	}
}

// ProcessMulti analyzes records across several channels and fuses the
// per-channel scores into one weighted combined score.
func (e *ProcessingEngine) ProcessMulti(ctx context.Context, channels []models.Channel, data map[models.Channel]models.Record) (*models.FusionResult, error) {
	results := make(map[models.Channel]models.AnalysisResult)
	for _, channel := range channels {
		record, ok := data[channel]
		if !ok {
			continue
		}
		results[channel] = e.Process(ctx, channel, record)
	}

	if len(results) == 0 {
		return nil, ErrNoValidChannels
	}

	fused := fuseScores(results)
	return &models.FusionResult{
		ChannelResults:     results,
		FusedRiskScore:     fused,
		OverallThreatLevel: AssessThreatLevel(fused),
		Timestamp:          time.Now(),
	}, nil
}

func fuseScores(results map[models.Channel]models.AnalysisResult) float64 {
	fused := 0.0
	for channel, result := range results {
		if result.Failed() {
			continue
		}
		fused += result.RiskScore * fusionWeights[channel]
	}
	return clamp(fused, 0, 1)
}

// record updates the alert history, counters and the user profile in
// one critical section.
func (e *ProcessingEngine) record(alert *models.Alert, userID string, channel models.Channel, features models.FeatureVector) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, alert)
	if excess := len(e.history) - e.historyLimit; excess > 0 {
		e.history = append(e.history[:0], e.history[excess:]...)
	}

	e.counters[alert.Channel]++
	e.totalAlerts++
	if alert.ThreatLevel.IsAlertable() {
		e.highRiskAlerts++
	}

	byChannel, ok := e.profiles[userID]
	if !ok {
		byChannel = make(map[models.Channel][]models.ProfileEntry)
		e.profiles[userID] = byChannel
	}
	entries := append(byChannel[channel], models.ProfileEntry{
		Timestamp: alert.Timestamp,
		Features:  features,
	})
	if excess := len(entries) - e.profileLimit; excess > 0 {
		entries = append(entries[:0], entries[excess:]...)
	}
	byChannel[channel] = entries
}

// Stats returns the live counters keyed the way the dashboard reads
// them: {channel}_alerts, total_alerts and high_risk_alerts. Counters
// that never fired are absent.
func (e *ProcessingEngine) Stats() map[string]int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := make(map[string]int64, len(e.counters)+2)
	for channel, count := range e.counters {
		stats[string(channel)+"_alerts"] = count
	}
	if e.totalAlerts > 0 {
		stats["total_alerts"] = e.totalAlerts
	}
	if e.highRiskAlerts > 0 {
		stats["high_risk_alerts"] = e.highRiskAlerts
	}
	return stats
}

// RecentAlerts returns the newest alerts in chronological order
func (e *ProcessingEngine) RecentAlerts() []*models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	limit := e.recentLimit
	if n := len(e.history); n < limit {
		limit = n
	}
	recent := make([]*models.Alert, limit)
	copy(recent, e.history[len(e.history)-limit:])
	return recent
}

// Trend buckets the alert history into the last 24 whole hours and
// averages the risk per channel within each bucket.
func (e *ProcessingEngine) Trend() []models.TrendPoint {
	e.mu.RLock()
	defer e.mu.RUnlock()

	start := time.Now().Truncate(time.Hour).Add(-23 * time.Hour)

	sums := make([]map[models.Channel]float64, 24)
	counts := make([]map[models.Channel]int, 24)
	combined := make([]float64, 24)
	combinedN := make([]int, 24)
	for i := range sums {
		sums[i] = make(map[models.Channel]float64)
		counts[i] = make(map[models.Channel]int)
	}

	for _, alert := range e.history {
		if alert.Timestamp.Before(start) {
			continue
		}
		idx := int(alert.Timestamp.Sub(start) / time.Hour)
		if idx > 23 {
			continue
		}
		sums[idx][alert.Channel] += alert.RiskScore
		counts[idx][alert.Channel]++
		combined[idx] += alert.RiskScore
		combinedN[idx]++
	}

	points := make([]models.TrendPoint, 24)
	for i := range points {
		points[i] = models.TrendPoint{
			Time:            start.Add(time.Duration(i) * time.Hour).Format("15:00"),
			EmailRisk:       bucketAvg(sums[i], counts[i], models.ChannelEmail),
			WebRisk:         bucketAvg(sums[i], counts[i], models.ChannelWebpage),
			SocialRisk:      bucketAvg(sums[i], counts[i], models.ChannelSocialMedia),
			TransactionRisk: bucketAvg(sums[i], counts[i], models.ChannelTransaction),
		}
		if combinedN[i] > 0 {
			points[i].CombinedRisk = combined[i] / float64(combinedN[i])
		}
	}
	return points
}

func bucketAvg(sums map[models.Channel]float64, counts map[models.Channel]int, channel models.Channel) float64 {
	if n := counts[channel]; n > 0 {
		return sums[channel] / float64(n)
	}
	return 0
}

// Distribution returns per-channel alert counts in display order
func (e *ProcessingEngine) Distribution() []models.ChannelCount {
	e.mu.RLock()
	defer e.mu.RUnlock()

	dist := make([]models.ChannelCount, 0, len(e.counters))
	for _, channel := range models.AllChannels() {
		if count, ok := e.counters[channel]; ok {
			dist = append(dist, models.ChannelCount{
				Name:  channel.DisplayName(),
				Value: count,
			})
		}
	}
	return dist
}

// ProfileFor returns a copy of one user's per-channel history
func (e *ProcessingEngine) ProfileFor(userID string) map[models.Channel][]models.ProfileEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	byChannel := e.profiles[userID]
	if byChannel == nil {
		return nil
	}
	out := make(map[models.Channel][]models.ProfileEntry, len(byChannel))
	for channel, entries := range byChannel {
		out[channel] = append([]models.ProfileEntry(nil), entries...)
	}
	return out
}
