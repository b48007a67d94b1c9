package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Alert is a materialized warning for a scored record. One is recorded
// for every analysis, SAFE included; consumers filter on the level.
type Alert struct {
	ID              string        `json:"id"`
	Channel         Channel       `json:"channel"`
	ThreatLevel     ThreatLevel   `json:"threat_level"`
	RiskScore       float64       `json:"risk_score"`
	Description     string        `json:"description"`
	Recommendations []string      `json:"recommendations"`
	Features        FeatureVector `json:"features"`
	UserID          string        `json:"user_id,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// AlertID derives the short stable identifier for an alert: the first 8
// hex characters of the digest over channel and timestamp. Kept for
// compatibility with downstream consumers that index on the short form.
func AlertID(channel Channel, ts time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s", channel, ts.Format(time.RFC3339Nano))))
	return hex.EncodeToString(sum[:])[:8]
}
