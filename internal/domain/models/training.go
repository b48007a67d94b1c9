package models

import "time"

// TrainingSample pairs one raw record with its ground-truth label
type TrainingSample struct {
	Data    Record `json:"data"`
	IsFraud bool   `json:"is_fraud"`
}

// ModelPerformance records the outcome of the most recent training run
// for one channel.
type ModelPerformance struct {
	Accuracy          float64   `json:"accuracy"`
	TrainedAt         time.Time `json:"trained_at"`
	Samples           int       `json:"samples"`
	FraudSamples      int       `json:"fraud_samples,omitempty"`
	LegitimateSamples int       `json:"legitimate_samples,omitempty"`
	ModelUsed         string    `json:"model_used,omitempty"`
	Method            string    `json:"method,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// AIStatus summarizes the learned-model layer for the status endpoint
type AIStatus struct {
	AdvancedAIAvailable bool                         `json:"advanced_ai_available"`
	ActiveAISystem      string                       `json:"active_ai_system"`
	ModelsLoaded        bool                         `json:"models_loaded"`
	TrainedModels       []Channel                    `json:"trained_models"`
	Performance         map[Channel]ModelPerformance `json:"performance"`
}
