// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventDiscoveryStarted   EventType = "discovery.started"
	EventDiscoveryCompleted EventType = "discovery.completed"
	EventDiscoveryFailed    EventType = "discovery.failed"
)

// DiscoveryEvent is published on the event bus for every discovery run
type DiscoveryEvent struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	RunID     uuid.UUID   `json:"run_id"`
	ScanType  string      `json:"scan_type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewDiscoveryEvent stamps a new event for the given run
func NewDiscoveryEvent(eventType EventType, runID uuid.UUID, scanType string, data interface{}) DiscoveryEvent {
	return DiscoveryEvent{
		ID:        uuid.New(),
		Type:      eventType,
		RunID:     runID,
		ScanType:  scanType,
		Data:      data,
		Timestamp: time.Now(),
	}
}
