package services

import (
	"fmt"
	"time"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// AlertGenerator materializes scored records into alerts with
// human-readable descriptions and per-level recommendation lists.
type AlertGenerator struct {
	log *logger.Logger
}

// NewAlertGenerator creates the alert generator
func NewAlertGenerator(log *logger.Logger) *AlertGenerator {
	return &AlertGenerator{log: log.WithComponent("alert-generator")}
}

// Generate builds the alert for one scored record
func (g *AlertGenerator) Generate(channel models.Channel, risk float64, level models.ThreatLevel, features models.FeatureVector, userID string) *models.Alert {
	now := time.Now()
	return &models.Alert{
		ID:              models.AlertID(channel, now),
		Channel:         channel,
		ThreatLevel:     level,
		RiskScore:       risk,
		Description:     alertDescription(channel, risk),
		Recommendations: recommendationsFor(level),
		Features:        features,
		UserID:          userID,
		Timestamp:       now,
	}
}

func alertDescription(channel models.Channel, risk float64) string {
	confidence := risk * 100
	switch channel {
	case models.ChannelEmail:
		return fmt.Sprintf("Phishing attempt detected with %.1f%% confidence", confidence)
	case models.ChannelWebpage:
		return fmt.Sprintf("Phishing website detected with %.1f%% confidence", confidence)
	case models.ChannelSocialMedia:
		return fmt.Sprintf("Social media scam detected with %.1f%% confidence", confidence)
	case models.ChannelTransaction:
		return fmt.Sprintf("Fraudulent transaction detected with %.1f%% confidence", confidence)
	}
	return fmt.Sprintf("Suspicious activity detected in %s", channel)
}

func recommendationsFor(level models.ThreatLevel) []string {
	switch level {
	case models.ThreatLevelCritical:
		return []string{
			"Immediate action required",
			"Block the source",
			"Report to authorities",
			"Freeze affected accounts",
		}
	case models.ThreatLevelHigh:
		return []string{
			"Investigate immediately",
			"Monitor closely",
			"Update security settings",
			"Enable additional verification",
		}
	case models.ThreatLevelMedium:
		return []string{
			"Review activity",
			"Enable alerts",
			"Monitor for patterns",
			"Update passwords",
		}
	case models.ThreatLevelLow:
		return []string{
			"Monitor for escalation",
			"Review security settings",
			"Stay vigilant",
		}
	}
	return []string{"Monitor the situation"}
}
