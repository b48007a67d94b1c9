package streaming

import (
	"time"

	"github.com/google/uuid"

	"fraudguard-lab/internal/domain/models"
)

// EventType represents the type of streamed event
type EventType string

const (
	EventTypeAlert             EventType = "alert"
	EventTypeTrainingCompleted EventType = "training_completed"
)

// AlertEvent wraps a generated alert for real-time distribution
type AlertEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Alert *models.Alert `json:"alert,omitempty"`
}

// NewAlertEvent creates an event from a generated alert
func NewAlertEvent(alert *models.Alert) *AlertEvent {
	return &AlertEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeAlert,
		Timestamp: time.Now(),
		Alert:     alert,
	}
}

// TrainingEvent announces the completion of a model training run
type TrainingEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Channel  models.Channel `json:"channel"`
	Success  bool           `json:"success"`
	Accuracy float64        `json:"accuracy"`
	Samples  int            `json:"samples"`
	Error    string         `json:"error,omitempty"`
}

// Subscription represents a client's alert filter preferences
type Subscription struct {
	// Filter by channels (empty = all)
	Channels []models.Channel `json:"channels,omitempty"`

	// Minimum threat level (empty = all, SAFE included)
	MinLevel models.ThreatLevel `json:"min_level,omitempty"`
}

// Matches checks if an alert event passes the subscription filters
func (s *Subscription) Matches(event *AlertEvent) bool {
	if event.Alert == nil {
		return false
	}

	// Check threat level
	if s.MinLevel != "" {
		levelOrder := map[models.ThreatLevel]int{
			models.ThreatLevelSafe:     1,
			models.ThreatLevelLow:      2,
			models.ThreatLevelMedium:   3,
			models.ThreatLevelHigh:     4,
			models.ThreatLevelCritical: 5,
		}
		if levelOrder[event.Alert.ThreatLevel] < levelOrder[s.MinLevel] {
			return false
		}
	}

	// Check channels
	if len(s.Channels) > 0 {
		found := false
		for _, c := range s.Channels {
			if c == event.Alert.Channel {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
