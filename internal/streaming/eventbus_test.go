package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

func newTestBus(t *testing.T) *EventBus {
	t.Helper()
	return NewEventBus(nil, logger.NewNop())
}

func receiveEvent(t *testing.T, ch <-chan *AlertEvent) *AlertEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_PublishAndSubscribe(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	event := NewAlertEvent(testAlert(models.ChannelEmail, models.ThreatLevelHigh))
	require.NoError(t, bus.Publish(context.Background(), event))

	got := receiveEvent(t, ch)
	assert.Same(t, event, got)
}

func TestEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	event := NewAlertEvent(testAlert(models.ChannelEmail, models.ThreatLevelLow))
	assert.NoError(t, bus.Publish(context.Background(), event))
}

func TestEventBus_SubscriberCount(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	assert.Equal(t, 0, bus.SubscriberCount())

	_, unsub1 := bus.Subscribe(context.Background(), &Subscription{})
	_, unsub2 := bus.Subscribe(context.Background(), &Subscription{})
	assert.Equal(t, 2, bus.SubscriberCount())

	unsub1()
	assert.Equal(t, 1, bus.SubscriberCount())

	// Unsubscribing twice is a no-op.
	unsub1()
	assert.Equal(t, 1, bus.SubscriberCount())

	unsub2()
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := newTestBus(t)

	ch, unsubscribe := bus.Subscribe(context.Background(), &Subscription{})
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.SubscriberCount())

	assert.NotPanics(t, unsubscribe)
}

func TestEventBus_DropsEventsWhenSubscriberIsFull(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	// Publish more events than the subscriber buffer holds without
	// draining. Publish must never block; the overflow is dropped.
	for i := 0; i < 150; i++ {
		require.NoError(t, bus.Publish(context.Background(), NewAlertEvent(testAlert(models.ChannelEmail, models.ThreatLevelHigh))))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, 100, received)
			return
		}
	}
}

func TestEventBusPublisher_NilComponents(t *testing.T) {
	publisher := NewEventBusPublisher(nil, nil)
	alert := testAlert(models.ChannelEmail, models.ThreatLevelCritical)

	assert.NotPanics(t, func() {
		publisher.PublishAlert(context.Background(), alert)
	})
	assert.NotPanics(t, func() {
		publisher.PublishTrainingResult(context.Background(), models.ChannelEmail, models.ModelPerformance{Accuracy: 0.9}, nil)
	})
	assert.NotPanics(t, func() {
		publisher.PublishTrainingResult(context.Background(), models.ChannelEmail, models.ModelPerformance{}, context.DeadlineExceeded)
	})
}

func TestEventBusPublisher_DeliversToBus(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	hub := NewWebSocketHub(logger.NewNop())
	publisher := NewEventBusPublisher(bus, hub)

	ch, unsubscribe := bus.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	alert := testAlert(models.ChannelWebpage, models.ThreatLevelCritical)
	publisher.PublishAlert(context.Background(), alert)

	event := receiveEvent(t, ch)
	assert.Equal(t, EventTypeAlert, event.Type)
	assert.Same(t, alert, event.Alert)

	_, err := uuid.Parse(event.ID)
	assert.NoError(t, err)
}
