package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

func TestAlertGenerator_Generate(t *testing.T) {
	gen := NewAlertGenerator(logger.NewNop())

	features := models.FeatureVector{"urgency_score": 0.4}
	alert := gen.Generate(models.ChannelEmail, 0.9, models.ThreatLevelCritical, features, "u-42")

	require.NotNil(t, alert)
	assert.Regexp(t, "^[0-9a-f]{8}$", alert.ID)
	assert.Equal(t, models.ChannelEmail, alert.Channel)
	assert.Equal(t, models.ThreatLevelCritical, alert.ThreatLevel)
	assert.Equal(t, 0.9, alert.RiskScore)
	assert.Equal(t, "Phishing attempt detected with 90.0% confidence", alert.Description)
	assert.Equal(t, features, alert.Features)
	assert.Equal(t, "u-42", alert.UserID)
	assert.False(t, alert.Timestamp.IsZero())
	assert.True(t, alert.IsAlertable())
}

func TestAlertDescription(t *testing.T) {
	tests := []struct {
		channel models.Channel
		risk    float64
		want    string
	}{
		{models.ChannelEmail, 0.875, "Phishing attempt detected with 87.5% confidence"},
		{models.ChannelWebpage, 0.5, "Phishing website detected with 50.0% confidence"},
		{models.ChannelSocialMedia, 1, "Social media scam detected with 100.0% confidence"},
		{models.ChannelTransaction, 0.333, "Fraudulent transaction detected with 33.3% confidence"},
		{models.ChannelMessaging, 0.7, "Suspicious activity detected in messaging"},
		{models.ChannelVoiceCall, 0.7, "Suspicious activity detected in voice_call"},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			assert.Equal(t, tt.want, alertDescription(tt.channel, tt.risk))
		})
	}
}

func TestRecommendationsFor(t *testing.T) {
	critical := recommendationsFor(models.ThreatLevelCritical)
	require.Len(t, critical, 4)
	assert.Equal(t, "Immediate action required", critical[0])

	high := recommendationsFor(models.ThreatLevelHigh)
	require.Len(t, high, 4)
	assert.Equal(t, "Investigate immediately", high[0])

	medium := recommendationsFor(models.ThreatLevelMedium)
	require.Len(t, medium, 4)
	assert.Equal(t, "Review activity", medium[0])

	low := recommendationsFor(models.ThreatLevelLow)
	require.Len(t, low, 3)
	assert.Equal(t, "Monitor for escalation", low[0])

	assert.Equal(t, []string{"Monitor the situation"}, recommendationsFor(models.ThreatLevelSafe))
}

func TestAlertIDStability(t *testing.T) {
	gen := NewAlertGenerator(logger.NewNop())

	a := gen.Generate(models.ChannelEmail, 0.5, models.ThreatLevelMedium, nil, "")
	b := gen.Generate(models.ChannelWebpage, 0.5, models.ThreatLevelMedium, nil, "")

	// Same instant, different channel still yields a distinct id.
	assert.Equal(t, models.AlertID(models.ChannelEmail, a.Timestamp), a.ID)
	assert.NotEqual(t, models.AlertID(models.ChannelWebpage, a.Timestamp), a.ID)
	assert.NotEmpty(t, b.ID)
}
