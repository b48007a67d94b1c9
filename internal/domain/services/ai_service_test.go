package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

func newTestAIService(t *testing.T) (*AIService, *FeatureExtractor, *RuleScorer) {
	t.Helper()
	log := logger.NewNop()
	extractor := newTestExtractor(t)
	rules := NewRuleScorer(log)

	cfg := DefaultAIServiceConfig()
	cfg.Forest.NumTrees = 15
	return NewAIService(cfg, extractor, rules, log), extractor, rules
}

// emailTrainingSet pairs obvious phishing mails with mundane office
// mail, enough volume for the classifier to separate the vocabularies.
func emailTrainingSet() []models.TrainingSample {
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
		samples = append(samples, models.TrainingSample{
			Data:    models.Record{"content": text},
			IsFraud: true,
		})
	}
	for _, text := range legit {
		samples = append(samples, models.TrainingSample{
			Data:    models.Record{"content": text},
			IsFraud: false,
		})
	}
	return samples
}

func TestAIService_ScoreFallsBackToRules(t *testing.T) {
	svc, extractor, rules := newTestAIService(t)

	record := models.Record{
		"content": "Urgent! Verify your bank account now",
		"sender":  "noreply@fake-bank.example",
		"subject": "Account suspended",
	}
	ex := extractor.Extract(record, models.ChannelEmail)

	// Nothing is trained yet, so the score must equal the rule tables.
	assert.Equal(t, rules.Score(ex.Features, models.ChannelEmail), svc.Score(ex, models.ChannelEmail))
}

func TestAIService_ScoreRuleOnlyChannels(t *testing.T) {
	svc, extractor, rules := newTestAIService(t)

	record := models.Record{"content": "URGENT help needed, transfer money now"}
	ex := extractor.Extract(record, models.ChannelMessaging)

	// Messaging has no classifier at all; rules always apply.
	assert.Equal(t, rules.Score(ex.Features, models.ChannelMessaging), svc.Score(ex, models.ChannelMessaging))
}

func TestAIService_TrainValidation(t *testing.T) {
	svc, _, _ := newTestAIService(t)

	t.Run("unknown channel", func(t *testing.T) {
		_, err := svc.Train(models.Channel("carrier_pigeon"), emailTrainingSet())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown channel")
	})

	t.Run("no samples", func(t *testing.T) {
		_, err := svc.Train(models.ChannelEmail, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no training samples")
	})

	t.Run("training guard", func(t *testing.T) {
		svc.trainingInProgress.Store(true)
		defer svc.trainingInProgress.Store(false)

		_, err := svc.Train(models.ChannelEmail, emailTrainingSet())
		assert.ErrorIs(t, err, ErrTrainingInProgress)
	})
}

func TestAIService_TrainEmailClassifier(t *testing.T) {
	svc, extractor, _ := newTestAIService(t)
	samples := emailTrainingSet()

	perf, err := svc.Train(models.ChannelEmail, samples)
	require.NoError(t, err)

	assert.Equal(t, len(samples), perf.Samples)
	assert.Equal(t, 6, perf.FraudSamples)
	assert.Equal(t, 6, perf.LegitimateSamples)
	assert.Equal(t, "email_classifier", perf.ModelUsed)
	assert.Greater(t, perf.Accuracy, 0.5)
	assert.False(t, perf.TrainedAt.IsZero())

	assert.Equal(t, []models.Channel{models.ChannelEmail}, svc.TrainedChannels())

	// The trained classifier separates the two vocabularies it saw.
	fraudEx := extractor.Extract(samples[0].Data, models.ChannelEmail)
	legitEx := extractor.Extract(samples[len(samples)-1].Data, models.ChannelEmail)
	fraudScore := svc.Score(fraudEx, models.ChannelEmail)
	legitScore := svc.Score(legitEx, models.ChannelEmail)

	assert.Greater(t, fraudScore, legitScore)
	assert.GreaterOrEqual(t, fraudScore, 0.0)
	assert.LessOrEqual(t, fraudScore, 1.0)
}

func TestAIService_TrainChannelWithoutClassifier(t *testing.T) {
	svc, _, _ := newTestAIService(t)

	samples := []models.TrainingSample{
		{Data: models.Record{"content": "wire me money now"}, IsFraud: true},
	}
	perf, err := svc.Train(models.ChannelMessaging, samples)
	require.NoError(t, err)

	assert.Equal(t, "rule-based", perf.Method)
	assert.Equal(t, 0.5, perf.Accuracy)
	assert.Equal(t, 1, perf.Samples)

	// A rule-based entry counts as trained for status purposes but
	// loads no classifier.
	status := svc.Status()
	assert.Equal(t, "advanced_ml", status.ActiveAISystem)
	assert.False(t, status.ModelsLoaded)
	assert.Contains(t, status.TrainedModels, models.ChannelMessaging)
}

func TestAIService_Status(t *testing.T) {
	svc, _, _ := newTestAIService(t)

	t.Run("before any training", func(t *testing.T) {
		status := svc.Status()
		assert.True(t, status.AdvancedAIAvailable)
		assert.Equal(t, "advanced_ml_random", status.ActiveAISystem)
		assert.False(t, status.ModelsLoaded)
		assert.Empty(t, status.TrainedModels)
	})

	t.Run("after training", func(t *testing.T) {
		_, err := svc.Train(models.ChannelEmail, emailTrainingSet())
		require.NoError(t, err)

		status := svc.Status()
		assert.Equal(t, "advanced_ml", status.ActiveAISystem)
		assert.True(t, status.ModelsLoaded)
		assert.Equal(t, []models.Channel{models.ChannelEmail}, status.TrainedModels)
		assert.Contains(t, status.Performance, models.ChannelEmail)
	})
}

func TestAIService_PerformanceIsACopy(t *testing.T) {
	svc, _, _ := newTestAIService(t)
	_, err := svc.Train(models.ChannelEmail, emailTrainingSet())
	require.NoError(t, err)

	perf := svc.Performance()
	perf[models.ChannelEmail] = models.ModelPerformance{Accuracy: -1}

	assert.NotEqual(t, -1.0, svc.Performance()[models.ChannelEmail].Accuracy)
}

func TestBoostFloor(t *testing.T) {
	tests := []struct {
		name    string
		channel models.Channel
		f       models.FeatureVector
		floor   float64
		applies bool
	}{
		{"email urgency", models.ChannelEmail, models.FeatureVector{"urgency_score": 0.4}, 0.4, true},
		{"email threats", models.ChannelEmail, models.FeatureVector{"threat_indicators": 3}, 0.4, true},
		{"email below thresholds", models.ChannelEmail, models.FeatureVector{"urgency_score": 0.2}, 0, false},
		{"transaction high value", models.ChannelTransaction, models.FeatureVector{"amount": 20000}, 0.5, true},
		{"transaction negative", models.ChannelTransaction, models.FeatureVector{"amount": -5}, 0.5, true},
		{"transaction ordinary", models.ChannelTransaction, models.FeatureVector{"amount": 50}, 0, false},
		{"social tiny account", models.ChannelSocialMedia, models.FeatureVector{"follower_count": 5, "is_verified": 1}, 0.45, true},
		{"social established", models.ChannelSocialMedia, models.FeatureVector{"follower_count": 500, "is_verified": 1}, 0, false},
		{"webpage shortened", models.ChannelWebpage, models.FeatureVector{"is_shortened": 1}, 0.5, true},
		{"webpage clean", models.ChannelWebpage, models.FeatureVector{}, 0, false},
		{"messaging has no floor", models.ChannelMessaging, models.FeatureVector{"urgent_requests": 5}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor, ok := boostFloor(tt.f, tt.channel)
			assert.Equal(t, tt.applies, ok)
			assert.Equal(t, tt.floor, floor)
		})
	}
}

func TestAIService_ScoreBoostsLowLearnedScores(t *testing.T) {
	svc, extractor, _ := newTestAIService(t)

	// A single-leaf forest pins the learned probability exactly.
	require.NoError(t, svc.models[models.ChannelEmail].forest.Restore(&ForestState{
		NumTrees:    1,
		NumFeatures: emailVectorDims,
		Trees:       []*NodeState{{Leaf: true, FraudProb: 0.03}},
	}))

	urgent := extractor.Extract(models.Record{"content": "URGENT: act now, hurry"}, models.ChannelEmail)
	benign := extractor.Extract(models.Record{"content": "lunch tomorrow?"}, models.ChannelEmail)

	// Strong urgency indicators lift the implausibly low probability to
	// the floor; the floor never lowers a score.
	assert.Equal(t, 0.4, svc.Score(urgent, models.ChannelEmail))
	assert.Equal(t, 0.03, svc.Score(benign, models.ChannelEmail))
}

func TestTransactionVector(t *testing.T) {
	f := models.FeatureVector{"amount": 5, "is_weekend": 1}
	vec := transactionVector(f)

	require.Len(t, vec, len(transactionVectorOrder))
	assert.Equal(t, 5.0, vec[0])
	assert.Equal(t, 1.0, vec[8])

	total := 0.0
	for _, v := range vec {
		total += v
	}
	assert.Equal(t, 6.0, total)
}

func TestTrainedChannelsSorted(t *testing.T) {
	svc, _, _ := newTestAIService(t)

	for _, ch := range []models.Channel{models.ChannelWebpage, models.ChannelEmail} {
		samples := []models.TrainingSample{
			{Data: models.Record{"url": "http://bit.ly/a", "content": "verify login"}, IsFraud: true},
			{Data: models.Record{"url": "https://docs.example.com", "content": "quarterly planning notes"}, IsFraud: false},
			{Data: models.Record{"url": "http://bit.ly/b", "content": "confirm account"}, IsFraud: true},
			{Data: models.Record{"url": "https://wiki.example.com", "content": "meeting agenda for tuesday"}, IsFraud: false},
		}
		if ch == models.ChannelEmail {
			samples = emailTrainingSet()
		}
		_, err := svc.Train(ch, samples)
		require.NoError(t, err, fmt.Sprintf("training %s", ch))
	}

	assert.Equal(t, []models.Channel{models.ChannelEmail, models.ChannelWebpage}, svc.TrainedChannels())
}
