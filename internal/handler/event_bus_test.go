package handler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"serial-discovery/internal/model"
)

func receive(t *testing.T, ch <-chan model.DiscoveryEvent) model.DiscoveryEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return model.DiscoveryEvent{}
}

func TestEventBus_DeliversByTypeAndWildcard(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Close()

	completed := bus.Subscribe(model.EventDiscoveryCompleted)
	all := bus.Subscribe(AllEvents)

	runID := uuid.New()
	bus.Publish(model.NewDiscoveryEvent(model.EventDiscoveryStarted, runID, "serial", nil))
	bus.Publish(model.NewDiscoveryEvent(model.EventDiscoveryCompleted, runID, "serial", nil))

	assert.Equal(t, model.EventDiscoveryStarted, receive(t, all).Type)
	assert.Equal(t, model.EventDiscoveryCompleted, receive(t, all).Type)

	event := receive(t, completed)
	assert.Equal(t, model.EventDiscoveryCompleted, event.Type)
	assert.Equal(t, runID, event.RunID)
}

func TestEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	done := make(chan struct{})
	go func() {
		bus.Start()
		close(done)
	}()

	sub := bus.Subscribe(AllEvents)
	bus.Close()
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event bus did not stop")
	}

	_, ok := <-sub
	assert.False(t, ok)

	// publishing after close is a no-op
	bus.Publish(model.NewDiscoveryEvent(model.EventDiscoveryFailed, uuid.New(), "all", nil))

	late := bus.Subscribe(AllEvents)
	_, ok = <-late
	assert.False(t, ok)
}
