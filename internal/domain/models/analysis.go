package models

import "time"

// FeatureVector maps feature names to numeric values. Extractors always
// emit the full key set for their channel; optional collaborator fields
// (sentiment) are the only keys that may be absent.
type FeatureVector map[string]float64

// Clone returns a copy safe to mutate
func (f FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into f, with an optional key prefix
func (f FeatureVector) Merge(other FeatureVector, prefix string) {
	for k, v := range other {
		f[prefix+k] = v
	}
}

// AnalysisResult is the outcome of processing a single record
type AnalysisResult struct {
	Channel     Channel       `json:"channel"`
	RiskScore   float64       `json:"risk_score"`
	ThreatLevel ThreatLevel   `json:"threat_level"`
	Alert       *Alert        `json:"alert"`
	Features    FeatureVector `json:"features"`
	Timestamp   time.Time     `json:"timestamp"`
	Error       string        `json:"error,omitempty"`
}

// Failed reports whether the analysis produced an error result
func (r AnalysisResult) Failed() bool {
	return r.Error != ""
}

// FusionResult aggregates per-channel scores into one weighted risk figure
type FusionResult struct {
	ChannelResults     map[Channel]AnalysisResult `json:"channel_results"`
	FusedRiskScore     float64                    `json:"fused_risk_score"`
	OverallThreatLevel ThreatLevel                `json:"overall_threat_level"`
	Timestamp          time.Time                  `json:"timestamp"`
}

// ProfileEntry is one appended observation in a user's channel history
type ProfileEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Features  FeatureVector `json:"features"`
}
