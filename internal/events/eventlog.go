// Package events provides the event sourcing log for the simulation.
// Every state-changing action on the engine leaves an immutable record
// here, so a running city can be audited and reconstructed.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeSimStarted      EventType = "SIM_STARTED"
	EventTypeYearStepped     EventType = "YEAR_STEPPED"
	EventTypeSimFinished     EventType = "SIM_FINISHED"
	EventTypeScenarioApplied EventType = "SCENARIO_APPLIED"
	EventTypeSimReset        EventType = "SIM_RESET"
	EventTypeBaselineSaved   EventType = "BASELINE_SAVED"
	EventTypeSpeedChanged    EventType = "SPEED_CHANGED"
	EventTypeZonesUpdated    EventType = "ZONES_UPDATED"
)

// SimEvent represents an immutable record of a simulation action.
type SimEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"` // "ENGINE", "API", "WS", "CLI"
	Year      int         `json:"year"`   // simulated year the event belongs to
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event SimEvent) error
}

// EventLog is the in-memory append-only log of simulation events.
// An optional persister writes every event through to storage.
type EventLog struct {
	mu        sync.RWMutex
	events    []SimEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]SimEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event SimEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e SimEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Replay returns the full history of events for state reconstruction.
func (el *EventLog) Replay() []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(t EventType) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByYearRange returns all events within a simulated year range, inclusive.
func (el *EventLog) GetByYearRange(from, to int) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if e.Year >= from && e.Year <= to {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of events appended so far.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// NewEventID creates a unique event identifier.
func NewEventID() string {
	return uuid.NewString()
}
