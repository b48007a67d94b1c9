package streaming

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fraudguard-lab/internal/domain/models"
)

// EventBusPublisher fans generated alerts out to the event bus and the
// WebSocket hub. It satisfies the engine's alert sink contract.
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// PublishAlert distributes a generated alert to NATS, local subscribers
// and connected WebSocket clients
func (p *EventBusPublisher) PublishAlert(ctx context.Context, alert *models.Alert) {
	event := NewAlertEvent(alert)

	if p.eventBus != nil {
		_ = p.eventBus.Publish(ctx, event)
	}

	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}
}

// PublishTrainingResult announces a completed training run
func (p *EventBusPublisher) PublishTrainingResult(ctx context.Context, channel models.Channel, perf models.ModelPerformance, trainErr error) {
	event := &TrainingEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeTrainingCompleted,
		Timestamp: time.Now(),
		Channel:   channel,
		Success:   trainErr == nil,
		Accuracy:  perf.Accuracy,
		Samples:   perf.Samples,
	}

	if trainErr != nil {
		event.Error = trainErr.Error()
	}

	if p.eventBus != nil {
		_ = p.eventBus.PublishTraining(ctx, event)
	}
}
