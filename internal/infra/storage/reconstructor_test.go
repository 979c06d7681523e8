package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/engine"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
)

// fakeSnapshotRepo serves snapshots from a map.
type fakeSnapshotRepo struct {
	snaps map[string]*StateSnapshot
}

func (f *fakeSnapshotRepo) Upsert(ctx context.Context, name string, payload []byte) error {
	f.snaps[name] = &StateSnapshot{Name: name, Payload: payload, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeSnapshotRepo) Get(ctx context.Context, name string) (*StateSnapshot, error) {
	return f.snaps[name], nil
}

// fakeEventRepo serves a fixed slice of events.
type fakeEventRepo struct {
	events []SimEvent
}

func (f *fakeEventRepo) Append(ctx context.Context, event SimEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) GetAll(ctx context.Context) ([]SimEvent, error) { return f.events, nil }

func (f *fakeEventRepo) GetByType(ctx context.Context, eventType string) ([]SimEvent, error) {
	var out []SimEvent
	for _, e := range f.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetByYearRange(ctx context.Context, from, to int) ([]SimEvent, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*SimEvent, error) {
	return nil, nil
}

func testState() engine.FullState {
	return engine.FullState{
		CurrentYear: 2040,
		TargetYear:  2040,
		Speed:       2,
		Stats:       city.Statistics{Population: 600000, SustainabilityScore: 70},
		Zones:       city.ZoneDistribution{city.ZoneResidential: 40},
		Baseline: engine.Baseline{
			Year:  2025,
			Stats: city.Statistics{Population: 500000, SustainabilityScore: 65},
		},
	}
}

func TestRestoreFreshDatabase(t *testing.T) {
	r := NewReconstructor(&fakeEventRepo{}, &fakeSnapshotRepo{snaps: map[string]*StateSnapshot{}}, logger.NewNop())

	state, err := r.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if state != nil {
		t.Errorf("Expected nil state for a fresh database, got %+v", state)
	}
}

func TestRestorePrefersAutosave(t *testing.T) {
	snaps := &fakeSnapshotRepo{snaps: map[string]*StateSnapshot{}}

	baseline := testState()
	baseline.CurrentYear = 2025
	baselineJSON, _ := json.Marshal(baseline)
	snaps.Upsert(context.Background(), "baseline", baselineJSON)

	autosave := testState()
	autosaveJSON, _ := json.Marshal(autosave)
	snaps.Upsert(context.Background(), "autosave", autosaveJSON)

	r := NewReconstructor(&fakeEventRepo{}, snaps, logger.NewNop())
	state, err := r.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if state == nil || state.CurrentYear != 2040 {
		t.Errorf("Expected the autosave state (year 2040), got %+v", state)
	}
}

func TestRestoreFallsBackToBaseline(t *testing.T) {
	snaps := &fakeSnapshotRepo{snaps: map[string]*StateSnapshot{}}
	stateJSON, _ := json.Marshal(testState())
	snaps.Upsert(context.Background(), "baseline", stateJSON)

	r := NewReconstructor(&fakeEventRepo{}, snaps, logger.NewNop())
	state, err := r.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if state == nil || state.Stats.Population != 600000 {
		t.Errorf("Expected the baseline snapshot state, got %+v", state)
	}
}

func TestRestoreRecoversScenariosFromLedger(t *testing.T) {
	// A scenario applied after the last autosave only exists as an
	// event; Restore folds it back into the history.
	snaps := &fakeSnapshotRepo{snaps: map[string]*StateSnapshot{}}
	stateJSON, _ := json.Marshal(testState())
	snaps.snaps["autosave"] = &StateSnapshot{
		Name:      "autosave",
		Payload:   stateJSON,
		UpdatedAt: time.Now().Add(-time.Minute),
	}

	eventRepo := &fakeEventRepo{events: []SimEvent{
		{
			ID:        "old",
			Timestamp: time.Now().Add(-2 * time.Minute), // before the snapshot
			EventType: "SCENARIO_APPLIED",
			Payload:   map[string]interface{}{"id": "green-energy", "name": "Green Energy Transition", "appliedAt": float64(2030)},
		},
		{
			ID:        "fresh",
			Timestamp: time.Now(),
			EventType: "SCENARIO_APPLIED",
			Payload:   map[string]interface{}{"id": "add-transit", "name": "Expand Public Transit", "appliedAt": float64(2040)},
		},
		{
			ID:        "broken",
			Timestamp: time.Now(),
			EventType: "SCENARIO_APPLIED",
			Payload:   map[string]interface{}{"unexpected": true},
		},
	}}

	r := NewReconstructor(eventRepo, snaps, logger.NewNop())
	state, err := r.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if len(state.History) != 1 {
		t.Fatalf("Expected exactly the post-snapshot scenario recovered, got %d entries", len(state.History))
	}
	if state.History[0].ID != "add-transit" || state.History[0].AppliedAt != 2040 {
		t.Errorf("Expected add-transit at 2040, got %+v", state.History[0])
	}
}
