package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/scenario"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/events"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
)

const (
	// DefaultSpeed is the pacing rate in simulated years per second.
	DefaultSpeed = 1.0
	// MinSpeed and MaxSpeed bound the configurable pacing rate.
	MinSpeed = 0.25
	MaxSpeed = 1000.0
)

// AppliedScenario records one scenario application in the history.
type AppliedScenario struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AppliedAt int    `json:"appliedAt"`
}

// Baseline is the frozen reference captured at construction, restore
// or SaveBaseline. All year-projection formulas measure from it.
type Baseline struct {
	Year  int                   `json:"year"`
	Stats city.Statistics       `json:"stats"`
	Zones city.ZoneDistribution `json:"zones"`
}

// ScenarioInfo is the static part of a scenario, safe to hand to callers.
type ScenarioInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenarioResult is the diff material returned by ApplyScenario.
// Before and After are independent copies.
type ScenarioResult struct {
	Before   city.Statistics `json:"before"`
	After    city.Statistics `json:"after"`
	Scenario ScenarioInfo    `json:"scenario"`
}

// UpdateFunc is invoked synchronously after every simulated year with a
// copy of the statistics. It gates forward progress of the stepping
// loop, so it must not block for an unbounded time.
type UpdateFunc func(year int, stats city.Statistics)

// StepPayload is attached to every YEAR_STEPPED event.
type StepPayload struct {
	Year  int             `json:"year"`
	Stats city.Statistics `json:"stats"`
}

// ScenarioPayload is attached to every SCENARIO_APPLIED event.
type ScenarioPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AppliedAt int    `json:"appliedAt"`
}

// RunPayload is attached to SIM_STARTED and SIM_FINISHED events.
type RunPayload struct {
	FromYear   int  `json:"fromYear"`
	TargetYear int  `json:"targetYear"`
	Stopped    bool `json:"stopped,omitempty"`
}

// Simulator owns the city statistics and the simulated clock.
// All state lives behind a single mutex so the HTTP, WebSocket and CLI
// callers are serialized by the object itself.
type Simulator struct {
	mu sync.Mutex

	catalog  *scenario.Catalog
	eventLog *events.EventLog
	logger   *logger.Logger

	stats    city.Statistics
	zones    city.ZoneDistribution
	baseline Baseline

	currentYear int
	targetYear  int
	speed       float64
	history     []AppliedScenario

	running       bool
	stopRequested bool
}

// NewSimulator captures the seed statistics and distribution as the
// baseline and starts the clock at startYear.
func NewSimulator(catalog *scenario.Catalog, eventLog *events.EventLog, log *logger.Logger, stats city.Statistics, zones city.ZoneDistribution, startYear int) *Simulator {
	return &Simulator{
		catalog:  catalog,
		eventLog: eventLog,
		logger:   log,
		stats:    stats,
		zones:    zones.Clone(),
		baseline: Baseline{
			Year:  startYear,
			Stats: stats,
			Zones: zones.Clone(),
		},
		currentYear: startYear,
		targetYear:  startYear,
		speed:       DefaultSpeed,
	}
}

// ApplyScenario looks up and applies a named intervention.
// Unknown ids are inert: nil result, no mutation, no history entry.
//
// The modifier sees the eight statistics fields plus a synthesized
// trafficDensity of 50 and an energyDemand alias of energyConsumption.
// Only six of its outputs are persisted: population, sustainability,
// energy efficiency, transit score, walkability and air quality. The
// carbonFootprint and greenCoverage outputs are computed but never
// written back by this path. A field absent from the modifier's output
// keeps its prior value; an explicit zero is written.
func (s *Simulator) ApplyScenario(id string) *ScenarioResult {
	sc := s.catalog.Get(id)
	if sc == nil {
		s.logger.Warn("scenario not found: %s", id)
		return nil
	}

	s.mu.Lock()
	before := s.stats

	changes := sc.Modifier(scenario.Snapshot{
		Population:          float64(s.stats.Population),
		SustainabilityScore: float64(s.stats.SustainabilityScore),
		CarbonFootprint:     float64(s.stats.CarbonFootprint),
		EnergyEfficiency:    float64(s.stats.EnergyEfficiency),
		GreenCoverage:       float64(s.stats.GreenCoverage),
		TransitScore:        float64(s.stats.TransitScore),
		Walkability:         float64(s.stats.Walkability),
		AirQuality:          float64(s.stats.AirQuality),
		TrafficDensity:      50,
		EnergyDemand:        float64(s.stats.EnergyConsumption),
	})

	if v, ok := changes[scenario.FieldPopulation]; ok {
		s.stats.Population = city.Round(v)
	}
	if v, ok := changes[scenario.FieldSustainabilityScore]; ok {
		s.stats.SustainabilityScore = city.ClampScore(v)
	}
	if v, ok := changes[scenario.FieldEnergyEfficiency]; ok {
		s.stats.EnergyEfficiency = city.ClampScore(v)
	}
	if v, ok := changes[scenario.FieldTransitScore]; ok {
		s.stats.TransitScore = city.ClampScore(v)
	}
	if v, ok := changes[scenario.FieldWalkability]; ok {
		s.stats.Walkability = city.ClampScore(v)
	}
	if v, ok := changes[scenario.FieldAirQuality]; ok {
		s.stats.AirQuality = city.ClampScore(v)
	}

	record := AppliedScenario{ID: sc.ID, Name: sc.Name, AppliedAt: s.currentYear}
	s.history = append(s.history, record)
	after := s.stats
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeScenarioApplied,
		Source:    "ENGINE",
		Year:      record.AppliedAt,
		Payload:   ScenarioPayload(record),
	})
	metrics.Get().RecordScenario()
	s.logger.Event("SCENARIO_APPLIED", sc.ID, sc.Name)

	return &ScenarioResult{
		Before:   before,
		After:    after,
		Scenario: ScenarioInfo{ID: sc.ID, Name: sc.Name, Description: sc.Description},
	}
}

// SetTargetYear stores the target without advancing the simulation.
func (s *Simulator) SetTargetYear(year int) {
	s.mu.Lock()
	s.targetYear = year
	s.mu.Unlock()
}

// SimulateTo steps the clock one simulated year at a time until it
// reaches targetYear. If a run is already active the call is a silent
// no-op. Stop requests are observed at iteration boundaries only; the
// in-flight step always completes and fires its callback. Cancelling
// ctx cuts the pacing sleep short and terminates the run at the next
// boundary check; it is meant for server shutdown, not for Stop.
func (s *Simulator) SimulateTo(ctx context.Context, targetYear int, onUpdate UpdateFunc) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopRequested = false
	s.targetYear = targetYear
	fromYear := s.currentYear

	direction := -1
	if targetYear > s.currentYear {
		direction = 1
	}
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeSimStarted,
		Source:    "ENGINE",
		Year:      fromYear,
		Payload:   RunPayload{FromYear: fromYear, TargetYear: targetYear},
	})
	s.logger.Info("simulation started: %d -> %d", fromYear, targetYear)

	for {
		s.mu.Lock()
		if s.stopRequested || s.currentYear == targetYear {
			stopped := s.stopRequested
			s.running = false
			s.stopRequested = false
			finalYear := s.currentYear
			s.mu.Unlock()

			s.eventLog.Append(events.SimEvent{
				ID:        events.NewEventID(),
				Timestamp: time.Now(),
				Type:      events.EventTypeSimFinished,
				Source:    "ENGINE",
				Year:      finalYear,
				Payload:   RunPayload{FromYear: fromYear, TargetYear: targetYear, Stopped: stopped},
			})
			s.logger.Info("simulation finished at year %d (stopped=%v)", finalYear, stopped)
			return
		}

		start := time.Now()
		s.currentYear += direction
		if direction > 0 {
			s.projectYear()
		} else if s.currentYear <= s.baseline.Year {
			// Rewinding to or past the baseline restores the full record.
			s.stats = s.baseline.Stats
		} else {
			s.projectYear()
		}
		year := s.currentYear
		snap := s.stats
		delay := time.Duration(float64(time.Second) / s.speed)
		s.mu.Unlock()

		metrics.Get().RecordStep(time.Since(start))

		s.eventLog.Append(events.SimEvent{
			ID:        events.NewEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypeYearStepped,
			Source:    "ENGINE",
			Year:      year,
			Payload:   StepPayload{Year: year, Stats: snap},
		})

		if onUpdate != nil {
			onUpdate(year, snap)
		}

		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.stopRequested = true
			s.mu.Unlock()
		case <-time.After(delay):
		}
	}
}

// Stop requests cancellation of an active run. It takes effect at the
// next loop boundary, not immediately.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.running {
		s.stopRequested = true
	}
	s.mu.Unlock()
}

// Reset restores statistics, distribution and clock from the baseline
// and clears the scenario history. Idempotent. An active run observes
// the stop request at its next boundary.
func (s *Simulator) Reset() {
	s.mu.Lock()
	if s.running {
		s.stopRequested = true
	}
	s.stats = s.baseline.Stats
	s.zones = s.baseline.Zones.Clone()
	s.currentYear = s.baseline.Year
	s.targetYear = s.baseline.Year
	s.history = nil
	year := s.currentYear
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeSimReset,
		Source:    "ENGINE",
		Year:      year,
	})
	s.logger.Info("simulation reset to baseline year %d", year)
}

// SaveBaseline freezes the current statistics, distribution and year as
// the new reference point for all projection formulas.
func (s *Simulator) SaveBaseline() {
	s.mu.Lock()
	s.baseline = Baseline{
		Year:  s.currentYear,
		Stats: s.stats,
		Zones: s.zones.Clone(),
	}
	year := s.currentYear
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeBaselineSaved,
		Source:    "ENGINE",
		Year:      year,
	})
	s.logger.Info("baseline saved at year %d", year)
}

// SetSpeed updates the pacing rate, clamped to [MinSpeed, MaxSpeed].
func (s *Simulator) SetSpeed(speed float64) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}

	s.mu.Lock()
	s.speed = speed
	year := s.currentYear
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeSpeedChanged,
		Source:    "ENGINE",
		Year:      year,
		Payload:   map[string]float64{"speed": speed},
	})
}

// Speed returns the current pacing rate in years per second.
func (s *Simulator) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetZones replaces the zone distribution supplied by the city model.
func (s *Simulator) SetZones(zones city.ZoneDistribution) {
	s.mu.Lock()
	s.zones = zones.Clone()
	year := s.currentYear
	s.mu.Unlock()

	s.eventLog.Append(events.SimEvent{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeZonesUpdated,
		Source:    "ENGINE",
		Year:      year,
	})
}

// Statistics returns a copy of the current statistics record.
func (s *Simulator) Statistics() city.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Zones returns a copy of the current zone distribution.
func (s *Simulator) Zones() city.ZoneDistribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zones.Clone()
}

// CurrentYear returns the simulated year.
func (s *Simulator) CurrentYear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentYear
}

// TargetYear returns the stored simulation target.
func (s *Simulator) TargetYear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetYear
}

// IsRunning reports whether a stepping loop is active.
func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// History returns a copy of the applied-scenario records.
func (s *Simulator) History() []AppliedScenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AppliedScenario, len(s.history))
	copy(out, s.history)
	return out
}

// projectYear recomputes the four baseline-relative fields for the
// current year. Scenario effects on the other fields are left alone,
// so sustainability, efficiency, coverage and transit persist across
// time travel while these four are overwritten. Caller holds the lock.
func (s *Simulator) projectYear() {
	s.stats = projectStats(s.baseline, s.currentYear, s.stats)
}
