// Package storage provides the persistence layer for the simulation
// server. This package implements the repository pattern to keep the
// domain pure.
package storage

import (
	"context"
	"time"
)

// SimEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type SimEvent struct {
	ID        string                 `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	Source    string                 `json:"source" db:"source"`
	Year      int                    `json:"year" db:"year"`
	Payload   map[string]interface{} `json:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event SimEvent) error

	// GetAll retrieves every persisted event in timestamp order.
	GetAll(ctx context.Context) ([]SimEvent, error)

	// GetByType retrieves all events of a specific type.
	GetByType(ctx context.Context, eventType string) ([]SimEvent, error)

	// GetByYearRange retrieves events within a simulated year range, inclusive.
	GetByYearRange(ctx context.Context, from, to int) ([]SimEvent, error)

	// GetByID retrieves a single event, or nil if it does not exist.
	GetByID(ctx context.Context, id string) (*SimEvent, error)
}

// StateSnapshot is a named full-state JSON dump of the simulator.
// Two names are used in practice: "baseline" and "autosave".
type StateSnapshot struct {
	Name      string    `json:"name" db:"name"`
	Payload   []byte    `json:"payload" db:"payload"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SnapshotRepository defines the interface for state snapshots.
type SnapshotRepository interface {
	// Upsert updates or inserts a named snapshot.
	Upsert(ctx context.Context, name string, payload []byte) error

	// Get retrieves a snapshot by name, or nil if it does not exist.
	Get(ctx context.Context, name string) (*StateSnapshot, error)
}

// StatsRow is one persisted statistics record, written per simulated step.
type StatsRow struct {
	Year                int       `json:"year" db:"year"`
	Population          int       `json:"population" db:"population"`
	SustainabilityScore int       `json:"sustainabilityScore" db:"sustainability_score"`
	CarbonFootprint     int       `json:"carbonFootprint" db:"carbon_footprint"`
	EnergyEfficiency    int       `json:"energyEfficiency" db:"energy_efficiency"`
	GreenCoverage       int       `json:"greenCoverage" db:"green_coverage"`
	TransitScore        int       `json:"transitScore" db:"transit_score"`
	Walkability         int       `json:"walkability" db:"walkability"`
	AirQuality          int       `json:"airQuality" db:"air_quality"`
	EnergyConsumption   int       `json:"energyConsumption" db:"energy_consumption"`
	RecordedAt          time.Time `json:"recordedAt" db:"recorded_at"`
}

// StatsHistoryRepository defines the interface for the per-step
// statistics history used by charts and the history API.
type StatsHistoryRepository interface {
	// Insert appends one statistics row.
	Insert(ctx context.Context, row StatsRow) error

	// Recent retrieves the latest rows, newest first.
	Recent(ctx context.Context, limit int) ([]StatsRow, error)

	// ByYear retrieves all rows recorded for a simulated year.
	ByYear(ctx context.Context, year int) ([]StatsRow, error)
}
