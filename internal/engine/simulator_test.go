package engine

import (
	"context"
	"math"
	"testing"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/scenario"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/events"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
)

func testStats() city.Statistics {
	return city.Statistics{
		Population:          500000,
		SustainabilityScore: 65,
		CarbonFootprint:     10,
		EnergyEfficiency:    60,
		GreenCoverage:       22,
		TransitScore:        55,
		Walkability:         58,
		AirQuality:          70,
		EnergyConsumption:   100,
	}
}

func testZones() city.ZoneDistribution {
	return city.ZoneDistribution{
		city.ZoneResidential: 40,
		city.ZoneGreen:       10,
	}
}

// newTestSimulator builds a simulator at max speed so runs finish in
// milliseconds instead of real time.
func newTestSimulator() (*Simulator, *events.EventLog) {
	el := events.NewEventLog(nil)
	sim := NewSimulator(scenario.NewCatalog(), el, logger.NewNop(), testStats(), testZones(), 2025)
	sim.SetSpeed(MaxSpeed)
	return sim, el
}

func TestApplyScenarioUnknownID(t *testing.T) {
	sim, _ := newTestSimulator()
	before := sim.Statistics()

	result := sim.ApplyScenario("terraform-mars")

	if result != nil {
		t.Fatalf("Expected nil result for unknown scenario, got %+v", result)
	}
	if sim.Statistics() != before {
		t.Errorf("Expected statistics unchanged after unknown scenario")
	}
	if len(sim.History()) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(sim.History()))
	}
}

func TestApplyScenarioWritesOnlyPersistedFields(t *testing.T) {
	// Setup
	sim, _ := newTestSimulator()

	// Act: add-transit raises transitScore and computes carbon and
	// traffic outputs that are never written back.
	result := sim.ApplyScenario("add-transit")

	// Assert
	if result == nil {
		t.Fatalf("Expected a result for add-transit")
	}
	stats := sim.Statistics()
	if stats.TransitScore != 70 {
		t.Errorf("Expected transitScore 70, got %d", stats.TransitScore)
	}
	if stats.CarbonFootprint != 10 {
		t.Errorf("Expected carbonFootprint untouched at 10, got %d", stats.CarbonFootprint)
	}
	if stats.Population != 500000 {
		t.Errorf("Expected population untouched, got %d", stats.Population)
	}

	history := sim.History()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	if history[0].ID != "add-transit" || history[0].AppliedAt != 2025 {
		t.Errorf("Expected add-transit applied at 2025, got %+v", history[0])
	}
}

func TestApplyScenarioGreenCoverageNotPersisted(t *testing.T) {
	sim, _ := newTestSimulator()

	sim.ApplyScenario("add-green-space")

	stats := sim.Statistics()
	if stats.GreenCoverage != 22 {
		t.Errorf("Expected greenCoverage untouched at 22, got %d", stats.GreenCoverage)
	}
	// The persisted outputs of the same scenario do land.
	if stats.AirQuality != 78 {
		t.Errorf("Expected airQuality 78, got %d", stats.AirQuality)
	}
	if stats.SustainabilityScore != 75 {
		t.Errorf("Expected sustainabilityScore 75, got %d", stats.SustainabilityScore)
	}
}

func TestApplyScenarioClampsAtHundred(t *testing.T) {
	sim, _ := newTestSimulator()

	// 65 + 10 three times would be 95; the fourth lands on 100, not 105.
	for i := 0; i < 4; i++ {
		sim.ApplyScenario("add-green-space")
	}

	if got := sim.Statistics().SustainabilityScore; got != 100 {
		t.Errorf("Expected sustainabilityScore clamped to 100, got %d", got)
	}
}

func TestApplyScenarioResultCopies(t *testing.T) {
	sim, _ := newTestSimulator()

	result := sim.ApplyScenario("add-transit")

	if result.Before.TransitScore != 55 {
		t.Errorf("Expected before.transitScore 55, got %d", result.Before.TransitScore)
	}
	if result.After.TransitScore != 70 {
		t.Errorf("Expected after.transitScore 70, got %d", result.After.TransitScore)
	}
	if result.Scenario.ID != "add-transit" {
		t.Errorf("Expected scenario info for add-transit, got %s", result.Scenario.ID)
	}
}

func TestSimulateForwardTenYears(t *testing.T) {
	// Setup
	sim, _ := newTestSimulator()
	years := make([]int, 0, 10)

	// Act
	sim.SimulateTo(context.Background(), 2035, func(year int, stats city.Statistics) {
		years = append(years, year)
	})

	// Assert: one callback per year, in order.
	if len(years) != 10 {
		t.Fatalf("Expected 10 steps, got %d", len(years))
	}
	if years[0] != 2026 || years[9] != 2035 {
		t.Errorf("Expected steps 2026..2035, got %d..%d", years[0], years[9])
	}

	stats := sim.Statistics()
	// 500000 * 1.015^10 = 580270.37
	if stats.Population != 580270 {
		t.Errorf("Expected population 580270 after 10 years, got %d", stats.Population)
	}
	// 10 + 10*0.5
	if stats.CarbonFootprint != 15 {
		t.Errorf("Expected carbonFootprint 15, got %d", stats.CarbonFootprint)
	}
	if sim.CurrentYear() != 2035 {
		t.Errorf("Expected current year 2035, got %d", sim.CurrentYear())
	}
	if sim.IsRunning() {
		t.Errorf("Expected the run to be finished")
	}
}

func TestSimulateToCurrentYearIsInert(t *testing.T) {
	sim, _ := newTestSimulator()
	called := false

	sim.SimulateTo(context.Background(), 2025, func(int, city.Statistics) { called = true })

	if called {
		t.Errorf("Expected no steps when the target equals the current year")
	}
	if sim.Statistics() != testStats() {
		t.Errorf("Expected statistics unchanged")
	}
}

func TestSimulateBackwardRestoresBaseline(t *testing.T) {
	sim, _ := newTestSimulator()

	sim.SimulateTo(context.Background(), 2060, nil)
	sim.SimulateTo(context.Background(), 2025, nil)

	if sim.CurrentYear() != 2025 {
		t.Fatalf("Expected to be back at 2025, got %d", sim.CurrentYear())
	}
	if sim.Statistics() != testStats() {
		t.Errorf("Expected the exact baseline statistics after rewinding, got %+v", sim.Statistics())
	}
}

func TestSimulateForwardIsDeterministic(t *testing.T) {
	// Two fresh simulators stepping the same span must agree exactly,
	// and time travel must be reversible: forward, back, forward again
	// lands on the same record.
	simA, _ := newTestSimulator()
	simB, _ := newTestSimulator()

	simA.SimulateTo(context.Background(), 2075, nil)
	simB.SimulateTo(context.Background(), 2075, nil)
	if simA.Statistics() != simB.Statistics() {
		t.Fatalf("Expected identical statistics, got %+v vs %+v", simA.Statistics(), simB.Statistics())
	}

	first := simA.Statistics()
	simA.SimulateTo(context.Background(), 2030, nil)
	simA.SimulateTo(context.Background(), 2075, nil)
	if simA.Statistics() != first {
		t.Errorf("Expected the replayed run to reproduce %+v, got %+v", first, simA.Statistics())
	}
}

func TestSimulateReentrancyIsNoOp(t *testing.T) {
	sim, _ := newTestSimulator()
	steps := 0

	sim.SimulateTo(context.Background(), 2030, func(year int, stats city.Statistics) {
		steps++
		// A second call while the loop is active must return immediately
		// without stepping.
		sim.SimulateTo(context.Background(), 2100, nil)
	})

	if steps != 5 {
		t.Errorf("Expected 5 steps from the outer run only, got %d", steps)
	}
	if sim.CurrentYear() != 2030 {
		t.Errorf("Expected current year 2030, got %d", sim.CurrentYear())
	}
}

func TestStopHaltsAtYearBoundary(t *testing.T) {
	sim, _ := newTestSimulator()
	steps := 0

	sim.SimulateTo(context.Background(), 2125, func(year int, stats city.Statistics) {
		steps++
		if steps == 3 {
			sim.Stop()
		}
	})

	if steps != 3 {
		t.Errorf("Expected the run to halt after 3 steps, got %d", steps)
	}
	if sim.CurrentYear() != 2028 {
		t.Errorf("Expected current year 2028, got %d", sim.CurrentYear())
	}
	if sim.IsRunning() {
		t.Errorf("Expected the run to be stopped")
	}
}

func TestStopWhenIdleIsIgnored(t *testing.T) {
	sim, _ := newTestSimulator()

	// A stale stop must not cancel the next run.
	sim.Stop()

	steps := 0
	sim.SimulateTo(context.Background(), 2030, func(int, city.Statistics) { steps++ })

	if steps != 5 {
		t.Errorf("Expected 5 steps after an idle Stop, got %d", steps)
	}
}

func TestContextCancelHaltsRun(t *testing.T) {
	sim, _ := newTestSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0

	sim.SimulateTo(ctx, 2125, func(year int, stats city.Statistics) {
		steps++
		if steps == 2 {
			cancel()
		}
	})

	if steps >= 100 {
		t.Errorf("Expected the cancelled run to halt early, got %d steps", steps)
	}
	if sim.IsRunning() {
		t.Errorf("Expected the run to be finished after cancellation")
	}
}

func TestResetRestoresBaselineAndClearsHistory(t *testing.T) {
	sim, _ := newTestSimulator()

	sim.ApplyScenario("add-transit")
	sim.SimulateTo(context.Background(), 2050, nil)

	sim.Reset()

	if sim.CurrentYear() != 2025 {
		t.Errorf("Expected year 2025 after reset, got %d", sim.CurrentYear())
	}
	if sim.Statistics() != testStats() {
		t.Errorf("Expected baseline statistics after reset, got %+v", sim.Statistics())
	}
	if len(sim.History()) != 0 {
		t.Errorf("Expected empty history after reset, got %d entries", len(sim.History()))
	}

	// Reset is idempotent.
	sim.Reset()
	if sim.Statistics() != testStats() || sim.CurrentYear() != 2025 {
		t.Errorf("Expected a second reset to be a no-op")
	}
}

func TestSaveBaselineRebasesFormulas(t *testing.T) {
	sim, _ := newTestSimulator()

	sim.SimulateTo(context.Background(), 2035, nil)
	atSave := sim.Statistics()
	sim.SaveBaseline()

	// Rewinding below the new baseline year restores the re-based
	// record, not the original 2025 one.
	sim.SimulateTo(context.Background(), 2025, nil)
	if sim.Statistics() != atSave {
		t.Errorf("Expected the saved baseline record %+v, got %+v", atSave, sim.Statistics())
	}
}

func TestSetSpeedClamps(t *testing.T) {
	sim, _ := newTestSimulator()

	cases := []struct {
		in   float64
		want float64
	}{
		{0.1, MinSpeed},
		{0.25, 0.25},
		{2, 2},
		{5000, MaxSpeed},
	}
	for _, c := range cases {
		sim.SetSpeed(c.in)
		if got := sim.Speed(); got != c.want {
			t.Errorf("Expected speed %v for input %v, got %v", c.want, c.in, got)
		}
	}
}

func TestProjectionIsPure(t *testing.T) {
	sim, _ := newTestSimulator()
	before := sim.Statistics()

	proj := sim.Projection(2065)

	if proj.Year != 2065 {
		t.Errorf("Expected projection year 2065, got %d", proj.Year)
	}
	wantPop := city.Round(500000 * math.Pow(1.015, 40))
	if proj.Population != wantPop {
		t.Errorf("Expected projected population %d, got %d", wantPop, proj.Population)
	}
	// 65 - 40*0.5
	if proj.SustainabilityScore != 45.0 {
		t.Errorf("Expected projected sustainability 45.0, got %v", proj.SustainabilityScore)
	}
	// 10 + 40*0.5
	if proj.CarbonFootprint != 30 {
		t.Errorf("Expected projected carbon 30, got %d", proj.CarbonFootprint)
	}

	if sim.Statistics() != before || sim.CurrentYear() != 2025 {
		t.Errorf("Expected projection to leave the live state untouched")
	}
}

func TestProjectionSustainabilityFloorsAtZero(t *testing.T) {
	sim, _ := newTestSimulator()

	// 65 - 200*0.5 would be -35.
	proj := sim.Projection(2225)

	if proj.SustainabilityScore != 0 {
		t.Errorf("Expected projected sustainability 0, got %v", proj.SustainabilityScore)
	}
}

func TestProjectionAtBaselineYear(t *testing.T) {
	sim, _ := newTestSimulator()

	proj := sim.Projection(2025)

	if proj.Population != 500000 || proj.SustainabilityScore != 65 || proj.CarbonFootprint != 10 {
		t.Errorf("Expected the baseline record at elapsed zero, got %+v", proj)
	}
}

func TestScenarioEffectsSurviveStepping(t *testing.T) {
	// Transit score is not one of the baseline-projected fields, so a
	// scenario boost must persist through years of stepping.
	sim, _ := newTestSimulator()

	sim.ApplyScenario("add-transit")
	sim.SimulateTo(context.Background(), 2045, nil)

	if got := sim.Statistics().TransitScore; got != 70 {
		t.Errorf("Expected transitScore 70 to survive stepping, got %d", got)
	}
}

func TestEventTrailOfARun(t *testing.T) {
	sim, el := newTestSimulator()

	sim.SimulateTo(context.Background(), 2030, nil)

	if n := len(el.GetByType(events.EventTypeSimStarted)); n != 1 {
		t.Errorf("Expected 1 SIM_STARTED event, got %d", n)
	}
	if n := len(el.GetByType(events.EventTypeYearStepped)); n != 5 {
		t.Errorf("Expected 5 YEAR_STEPPED events, got %d", n)
	}
	if n := len(el.GetByType(events.EventTypeSimFinished)); n != 1 {
		t.Errorf("Expected 1 SIM_FINISHED event, got %d", n)
	}
}

func TestStateRoundTrip(t *testing.T) {
	sim, _ := newTestSimulator()
	sim.ApplyScenario("add-transit")
	sim.SimulateTo(context.Background(), 2040, nil)

	dump := sim.State()

	restored, _ := newTestSimulator()
	restored.RestoreState(dump)

	if restored.CurrentYear() != sim.CurrentYear() {
		t.Errorf("Expected year %d after restore, got %d", sim.CurrentYear(), restored.CurrentYear())
	}
	if restored.Statistics() != sim.Statistics() {
		t.Errorf("Expected statistics %+v, got %+v", sim.Statistics(), restored.Statistics())
	}
	if len(restored.History()) != 1 {
		t.Errorf("Expected 1 history entry after restore, got %d", len(restored.History()))
	}

	// The restored engine projects from the same baseline.
	if restored.Projection(2060) != sim.Projection(2060) {
		t.Errorf("Expected identical projections after restore")
	}
}
