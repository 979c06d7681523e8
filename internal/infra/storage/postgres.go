// Package storage - postgres.go
// PostgreSQL implementations of the repositories, for deployments where
// the simulation state outlives a single host.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
)

// InitPostgres opens the database and creates the schemas.
func InitPostgres(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			source TEXT NOT NULL,
			year INTEGER NOT NULL,
			payload JSONB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stats_history (
			id BIGSERIAL PRIMARY KEY,
			year INTEGER NOT NULL,
			population INTEGER NOT NULL,
			sustainability_score INTEGER NOT NULL,
			carbon_footprint INTEGER NOT NULL,
			energy_efficiency INTEGER NOT NULL,
			green_coverage INTEGER NOT NULL,
			transit_score INTEGER NOT NULL,
			walkability INTEGER NOT NULL,
			air_quality INTEGER NOT NULL,
			energy_consumption INTEGER NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);`,
		`CREATE INDEX IF NOT EXISTS idx_events_year ON events(year);`,
		`CREATE INDEX IF NOT EXISTS idx_stats_year ON stats_history(year);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("failed to create schemas: %w", err)
		}
	}

	return db, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db *sqlx.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Append inserts a new event into the immutable ledger.
func (r *PostgresEventRepository) Append(ctx context.Context, event SimEvent) error {
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, timestamp, event_type, source, year, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.Source, event.Year, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SimEvent, error) {
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	events := make([]SimEvent, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *PostgresEventRepository) GetAll(ctx context.Context) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events ORDER BY timestamp ASC`)
}

func (r *PostgresEventRepository) GetByType(ctx context.Context, eventType string) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE event_type = $1 ORDER BY timestamp ASC`, eventType)
}

func (r *PostgresEventRepository) GetByYearRange(ctx context.Context, from, to int) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE year BETWEEN $1 AND $2 ORDER BY timestamp ASC`, from, to)
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*SimEvent, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e, err := row.toEvent()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PostgresSnapshotRepository implements SnapshotRepository using PostgreSQL.
type PostgresSnapshotRepository struct {
	db *sqlx.DB
}

func NewPostgresSnapshotRepository(db *sqlx.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) Upsert(ctx context.Context, name string, payload []byte) error {
	query := `
		INSERT INTO snapshots (name, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(name) DO UPDATE SET
			payload=EXCLUDED.payload,
			updated_at=EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, name, payload, time.Now())
	return err
}

func (r *PostgresSnapshotRepository) Get(ctx context.Context, name string) (*StateSnapshot, error) {
	var snap StateSnapshot
	err := r.db.GetContext(ctx, &snap, `SELECT name, payload, updated_at FROM snapshots WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// PostgresStatsRepository implements StatsHistoryRepository using PostgreSQL.
type PostgresStatsRepository struct {
	db *sqlx.DB
}

func NewPostgresStatsRepository(db *sqlx.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) Insert(ctx context.Context, row StatsRow) error {
	query := `
		INSERT INTO stats_history (year, population, sustainability_score, carbon_footprint,
			energy_efficiency, green_coverage, transit_score, walkability, air_quality,
			energy_consumption, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		row.Year, row.Population, row.SustainabilityScore, row.CarbonFootprint,
		row.EnergyEfficiency, row.GreenCoverage, row.TransitScore, row.Walkability,
		row.AirQuality, row.EnergyConsumption, row.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats row: %w", err)
	}
	return nil
}

func (r *PostgresStatsRepository) Recent(ctx context.Context, limit int) ([]StatsRow, error) {
	var rows []StatsRow
	query := `SELECT year, population, sustainability_score, carbon_footprint, energy_efficiency,
		green_coverage, transit_score, walkability, air_quality, energy_consumption, recorded_at
		FROM stats_history ORDER BY recorded_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresStatsRepository) ByYear(ctx context.Context, year int) ([]StatsRow, error) {
	var rows []StatsRow
	query := `SELECT year, population, sustainability_score, carbon_footprint, energy_efficiency,
		green_coverage, transit_score, walkability, air_quality, energy_consumption, recorded_at
		FROM stats_history WHERE year = $1 ORDER BY recorded_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, err
	}
	return rows, nil
}
