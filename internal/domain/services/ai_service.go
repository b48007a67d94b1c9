package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// ErrTrainingInProgress is returned by Train while another training run
// holds the guard.
var ErrTrainingInProgress = errors.New("training already in progress")

// Hash dimensions for the text classifiers. Shorter-text channels get
// smaller feature spaces.
const (
	emailVectorDims   = 512
	socialVectorDims  = 384
	webpageVectorDims = 256
)

// transactionVectorOrder fixes the column order of the numeric
// transaction matrix. Training and scoring must agree on it exactly.
var transactionVectorOrder = []string{
	"amount", "amount_log", "is_high_value", "is_negative", "location_distance",
	"is_foreign", "hour_of_day", "day_of_week", "is_weekend", "is_holiday",
}

// channelModel pairs one forest with the vectorizer feeding it. A nil
// vectorizer means the channel trains on the fixed-order numeric vector
// instead of hashed text.
type channelModel struct {
	name       string
	forest     *RandomForest
	vectorizer *HashingVectorizer
}

// AIService owns the per-channel learned classifiers and decides, per
// request, whether a trained model or the rule tables produce the risk
// score. Training runs one channel at a time.
type AIService struct {
	extractor *FeatureExtractor
	rules     *RuleScorer
	models    map[models.Channel]*channelModel

	mu          sync.RWMutex
	performance map[models.Channel]models.ModelPerformance

	trainingInProgress atomic.Bool

	log *logger.Logger
}

// AIServiceConfig holds configuration for the AI service
type AIServiceConfig struct {
	Forest RandomForestConfig
}

// DefaultAIServiceConfig returns default configuration
func DefaultAIServiceConfig() AIServiceConfig {
	return AIServiceConfig{
		Forest: DefaultRandomForestConfig(),
	}
}

// NewAIService creates the AI service with one classifier per learnable
// channel. The remaining channels stay rule-based.
func NewAIService(config AIServiceConfig, extractor *FeatureExtractor, rules *RuleScorer, log *logger.Logger) *AIService {
	s := &AIService{
		extractor:   extractor,
		rules:       rules,
		models:      make(map[models.Channel]*channelModel),
		performance: make(map[models.Channel]models.ModelPerformance),
		log:         log.WithComponent("ai-service"),
	}

	s.models[models.ChannelEmail] = &channelModel{
		name:       "email_classifier",
		forest:     NewRandomForest(config.Forest, log),
		vectorizer: NewHashingVectorizer(emailVectorDims),
	}
	s.models[models.ChannelTransaction] = &channelModel{
		name:   "transaction_classifier",
		forest: NewRandomForest(config.Forest, log),
	}
	s.models[models.ChannelSocialMedia] = &channelModel{
		name:       "social_media_classifier",
		forest:     NewRandomForest(config.Forest, log),
		vectorizer: NewHashingVectorizer(socialVectorDims),
	}
	s.models[models.ChannelWebpage] = &channelModel{
		name:       "webpage_classifier",
		forest:     NewRandomForest(config.Forest, log),
		vectorizer: NewHashingVectorizer(webpageVectorDims),
	}

	s.log.Info().Int("classifiers", len(s.models)).Msg("learned models initialized")
	return s
}

// Score computes the fraud risk for one extraction. A trained
// classifier scores first, floored by the indicator boost when it runs
// suspiciously low; everything else takes the rule tables. The result
// is finite and in [0, 1].
func (s *AIService) Score(ex Extraction, channel models.Channel) float64 {
	model := s.models[channel]
	if model == nil || !model.forest.IsTrained() {
		return s.rules.Score(ex.Features, channel)
	}

	proba := model.forest.PredictProba(vectorFor(ex, model))
	if math.IsNaN(proba) || math.IsInf(proba, 0) {
		s.log.Warn().
			Str("channel", channel.String()).
			Msg("classifier returned non-finite probability, falling back to rules")
		return s.rules.Score(ex.Features, channel)
	}

	if proba < 0.1 {
		if floor, ok := boostFloor(ex.Features, channel); ok {
			proba = math.Max(proba, floor)
		}
	}

	return clamp(proba, 0, 1)
}

// vectorFor builds the classifier input: hashed text for text channels,
// the fixed-order numeric vector otherwise.
func vectorFor(ex Extraction, model *channelModel) []float64 {
	if model.vectorizer != nil {
		return model.vectorizer.Transform(ex.Text)
	}
	return transactionVector(ex.Features)
}

// transactionVector projects the feature map onto the column order the
// transaction classifier trains on. Missing features read as zero.
func transactionVector(features models.FeatureVector) []float64 {
	vec := make([]float64, len(transactionVectorOrder))
	for i, name := range transactionVectorOrder {
		vec[i] = features[name]
	}
	return vec
}

// boostFloor returns the floor applied when a trained classifier scores
// an indicator-laden record below 0.1. The floor only ever raises the
// score.
func boostFloor(f models.FeatureVector, channel models.Channel) (float64, bool) {
	switch channel {
	case models.ChannelEmail:
		if f["urgency_score"] > 0.3 || f["threat_indicators"] > 2 {
			return 0.4, true
		}
	case models.ChannelTransaction:
		if f["amount"] > 10000 || f["amount"] < 0 || f["is_foreign"] > 0 {
			return 0.5, true
		}
	case models.ChannelSocialMedia:
		if f["follower_count"] < 10 || f["suspicious_link_count"] > 0 || f["is_verified"] == 0 {
			return 0.45, true
		}
	case models.ChannelWebpage:
		if f["is_shortened"] > 0 || f["phishing_keywords"] > 0 {
			return 0.5, true
		}
	}
	return 0, false
}

// Train fits the channel's classifier on labeled samples, running the
// same extraction the scoring path runs. A valid channel without a
// classifier records a nominal rule-based entry instead of training.
func (s *AIService) Train(channel models.Channel, samples []models.TrainingSample) (models.ModelPerformance, error) {
	if !channel.IsValid() {
		return models.ModelPerformance{}, fmt.Errorf("unknown channel %q", channel)
	}
	if len(samples) == 0 {
		return models.ModelPerformance{}, fmt.Errorf("no training samples")
	}

	if !s.trainingInProgress.CompareAndSwap(false, true) {
		return models.ModelPerformance{}, ErrTrainingInProgress
	}
	defer s.trainingInProgress.Store(false)

	model := s.models[channel]
	if model == nil {
		perf := models.ModelPerformance{
			Accuracy:  0.5,
			TrainedAt: time.Now(),
			Samples:   len(samples),
			Method:    "rule-based",
		}
		s.setPerformance(channel, perf)
		s.log.Warn().
			Str("channel", channel.String()).
			Msg("channel has no classifier, recorded rule-based entry")
		return perf, nil
	}

	startTime := time.Now()

	data := make([][]float64, 0, len(samples))
	labels := make([]int, 0, len(samples))
	fraud := 0
	for _, sample := range samples {
		ex := s.extractor.Extract(sample.Data, channel)
		data = append(data, vectorFor(ex, model))

		label := 0
		if sample.IsFraud {
			label = 1
			fraud++
		}
		labels = append(labels, label)
	}

	if err := model.forest.Fit(data, labels); err != nil {
		perf := models.ModelPerformance{
			TrainedAt: time.Now(),
			Samples:   len(samples),
			Error:     err.Error(),
		}
		s.setPerformance(channel, perf)
		s.log.Error().Err(err).Str("channel", channel.String()).Msg("training failed")
		return perf, fmt.Errorf("training %s classifier: %w", channel, err)
	}

	perf := models.ModelPerformance{
		Accuracy:          model.forest.Accuracy(),
		TrainedAt:         time.Now(),
		Samples:           len(samples),
		FraudSamples:      fraud,
		LegitimateSamples: len(samples) - fraud,
		ModelUsed:         model.name,
	}
	s.setPerformance(channel, perf)

	s.log.Info().
		Str("channel", channel.String()).
		Int("samples", len(samples)).
		Int("fraud_samples", fraud).
		Float64("accuracy", perf.Accuracy).
		Dur("duration", time.Since(startTime)).
		Msg("channel model trained")

	return perf, nil
}

func (s *AIService) setPerformance(channel models.Channel, perf models.ModelPerformance) {
	s.mu.Lock()
	s.performance[channel] = perf
	s.mu.Unlock()
}

// Performance returns a copy of the per-channel training records
func (s *AIService) Performance() map[models.Channel]models.ModelPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.Channel]models.ModelPerformance, len(s.performance))
	for ch, perf := range s.performance {
		out[ch] = perf
	}
	return out
}

// TrainedChannels lists the channels whose classifier is currently fit
func (s *AIService) TrainedChannels() []models.Channel {
	var trained []models.Channel
	for ch, model := range s.models {
		if model.forest.IsTrained() {
			trained = append(trained, ch)
		}
	}
	sort.Slice(trained, func(i, j int) bool { return trained[i] < trained[j] })
	return trained
}

// Status reports which scoring system is live: advanced_ml once any
// channel has a training run with a positive accuracy behind it,
// advanced_ml_random before that.
func (s *AIService) Status() models.AIStatus {
	perf := s.Performance()

	trained := make([]models.Channel, 0, len(perf))
	for ch, p := range perf {
		if p.Accuracy > 0 {
			trained = append(trained, ch)
		}
	}
	sort.Slice(trained, func(i, j int) bool { return trained[i] < trained[j] })

	active := "advanced_ml_random"
	if len(trained) > 0 {
		active = "advanced_ml"
	}

	return models.AIStatus{
		AdvancedAIAvailable: true,
		ActiveAISystem:      active,
		ModelsLoaded:        len(s.TrainedChannels()) > 0,
		TrainedModels:       trained,
		Performance:         perf,
	}
}
