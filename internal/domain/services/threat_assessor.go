package services

import "fraudguard-lab/internal/domain/models"

// AssessThreatLevel maps a risk score onto its threat level. Band
// bounds are exclusive: a score sitting exactly on a bound stays in the
// band below it.
func AssessThreatLevel(risk float64) models.ThreatLevel {
	switch {
	case risk > 0.8:
		return models.ThreatLevelCritical
	case risk > 0.6:
		return models.ThreatLevelHigh
	case risk > 0.4:
		return models.ThreatLevelMedium
	case risk > 0.2:
		return models.ThreatLevelLow
	default:
		return models.ThreatLevelSafe
	}
}
