package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// eventRow is the struct-scan shape of the events table. The payload is
// stored as a JSON text column and decoded on the way out.
type eventRow struct {
	ID        string    `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	EventType string    `db:"event_type"`
	Source    string    `db:"source"`
	Year      int       `db:"year"`
	Payload   string    `db:"payload"`
}

func (r eventRow) toEvent() (SimEvent, error) {
	e := SimEvent{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		EventType: r.EventType,
		Source:    r.Source,
		Year:      r.Year,
	}
	if r.Payload != "" && r.Payload != "null" {
		if err := json.Unmarshal([]byte(r.Payload), &e.Payload); err != nil {
			return e, fmt.Errorf("failed to decode event payload: %w", err)
		}
	}
	return e, nil
}

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sqlx.DB
}

func NewSQLiteEventRepository(db *sqlx.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event SimEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, timestamp, event_type, source, year, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.Source, event.Year, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SimEvent, error) {
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

func (r *SQLiteEventRepository) GetAll(ctx context.Context) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events ORDER BY timestamp ASC`)
}

func (r *SQLiteEventRepository) GetByType(ctx context.Context, eventType string) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE event_type = ? ORDER BY timestamp ASC`, eventType)
}

func (r *SQLiteEventRepository) GetByYearRange(ctx context.Context, from, to int) ([]SimEvent, error) {
	return r.getMany(ctx, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE year BETWEEN ? AND ? ORDER BY timestamp ASC`, from, to)
}

func (r *SQLiteEventRepository) GetByID(ctx context.Context, id string) (*SimEvent, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT id, timestamp, event_type, source, year, payload FROM events WHERE id = ?`, id)
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

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sqlx.DB
}

func NewSQLiteSnapshotRepository(db *sqlx.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Upsert(ctx context.Context, name string, payload []byte) error {
	query := `
		INSERT INTO snapshots (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, name, string(payload), time.Now())
	return err
}

func (r *SQLiteSnapshotRepository) Get(ctx context.Context, name string) (*StateSnapshot, error) {
	var snap StateSnapshot
	err := r.db.GetContext(ctx, &snap, `SELECT name, payload, updated_at FROM snapshots WHERE name = ?`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// ---------------------------------------------------------
// SQLiteStatsRepository
// ---------------------------------------------------------

type SQLiteStatsRepository struct {
	db *sqlx.DB
}

func NewSQLiteStatsRepository(db *sqlx.DB) *SQLiteStatsRepository {
	return &SQLiteStatsRepository{db: db}
}

func (r *SQLiteStatsRepository) Insert(ctx context.Context, row StatsRow) error {
	query := `
		INSERT INTO stats_history (year, population, sustainability_score, carbon_footprint,
			energy_efficiency, green_coverage, transit_score, walkability, air_quality,
			energy_consumption, recorded_at)
		VALUES (:year, :population, :sustainability_score, :carbon_footprint,
			:energy_efficiency, :green_coverage, :transit_score, :walkability, :air_quality,
			:energy_consumption, :recorded_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to insert stats row: %w", err)
	}
	return nil
}

func (r *SQLiteStatsRepository) Recent(ctx context.Context, limit int) ([]StatsRow, error) {
	var rows []StatsRow
	query := `SELECT year, population, sustainability_score, carbon_footprint, energy_efficiency,
		green_coverage, transit_score, walkability, air_quality, energy_consumption, recorded_at
		FROM stats_history ORDER BY recorded_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SQLiteStatsRepository) ByYear(ctx context.Context, year int) ([]StatsRow, error) {
	var rows []StatsRow
	query := `SELECT year, population, sustainability_score, carbon_footprint, energy_efficiency,
		green_coverage, transit_score, walkability, air_quality, energy_consumption, recorded_at
		FROM stats_history WHERE year = ? ORDER BY recorded_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, err
	}
	return rows, nil
}
