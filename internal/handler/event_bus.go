// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"serial-discovery/internal/model"
)

// AllEvents subscribes to every event type
const AllEvents model.EventType = "*"

// EventBus manages event distribution
type EventBus struct {
	subscribers map[model.EventType][]chan model.DiscoveryEvent
	events      chan model.DiscoveryEvent
	closed      bool
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType][]chan model.DiscoveryEvent),
		events:      make(chan model.DiscoveryEvent, 1000),
		logger:      logger,
	}
}

// Start distributes events until Close is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}

	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	for eventType, subscribers := range eb.subscribers {
		for _, subscriber := range subscribers {
			close(subscriber)
		}
		delete(eb.subscribers, eventType)
	}
}

// Close stops accepting events. Subscriber channels are closed once the
// queue drains.
func (eb *EventBus) Close() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if !eb.closed {
		eb.closed = true
		close(eb.events)
	}
}

// Publish publishes an event
func (eb *EventBus) Publish(event model.DiscoveryEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	if eb.closed {
		return
	}

	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.Type)),
		)
	}
}

// Subscribe subscribes to events of a specific type, or AllEvents
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan model.DiscoveryEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.DiscoveryEvent, 100)
	if eb.closed {
		close(subscriber)
		return subscriber
	}

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event model.DiscoveryEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	deliver := func(subscribers []chan model.DiscoveryEvent) {
		for _, subscriber := range subscribers {
			select {
			case subscriber <- event:
			default:
				// Subscriber is slow, skip
			}
		}
	}

	deliver(eb.subscribers[event.Type])
	deliver(eb.subscribers[AllEvents])
}
