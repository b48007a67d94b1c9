package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fraudguard-lab/internal/domain/models"
)

func TestAssessThreatLevel(t *testing.T) {
	tests := []struct {
		risk float64
		want models.ThreatLevel
	}{
		{0.0, models.ThreatLevelSafe},
		{0.2, models.ThreatLevelSafe}, // bound stays in the lower band
		{0.21, models.ThreatLevelLow},
		{0.4, models.ThreatLevelLow},
		{0.41, models.ThreatLevelMedium},
		{0.6, models.ThreatLevelMedium},
		{0.61, models.ThreatLevelHigh},
		{0.8, models.ThreatLevelHigh},
		{0.81, models.ThreatLevelCritical},
		{1.0, models.ThreatLevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AssessThreatLevel(tt.risk), "risk %.2f", tt.risk)
	}
}
