package engine

import "github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"

// FullState is the serializable dump of the simulator. The autosave
// routine persists it as a snapshot and boot-time restore feeds it back
// through RestoreState.
type FullState struct {
	CurrentYear int                   `json:"currentYear"`
	TargetYear  int                   `json:"targetYear"`
	Speed       float64               `json:"speed"`
	Stats       city.Statistics       `json:"stats"`
	Zones       city.ZoneDistribution `json:"zones"`
	Baseline    Baseline              `json:"baseline"`
	History     []AppliedScenario     `json:"history"`
}

// State captures an independent copy of the full simulator state.
func (s *Simulator) State() FullState {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]AppliedScenario, len(s.history))
	copy(history, s.history)

	return FullState{
		CurrentYear: s.currentYear,
		TargetYear:  s.targetYear,
		Speed:       s.speed,
		Stats:       s.stats,
		Zones:       s.zones.Clone(),
		Baseline: Baseline{
			Year:  s.baseline.Year,
			Stats: s.baseline.Stats,
			Zones: s.baseline.Zones.Clone(),
		},
		History: history,
	}
}

// RestoreState loads a previously captured dump. Not valid while a
// stepping loop is active; callers stop the run first.
func (s *Simulator) RestoreState(st FullState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentYear = st.CurrentYear
	s.targetYear = st.TargetYear
	if st.Speed >= MinSpeed && st.Speed <= MaxSpeed {
		s.speed = st.Speed
	}
	s.stats = st.Stats
	s.zones = st.Zones.Clone()
	s.baseline = Baseline{
		Year:  st.Baseline.Year,
		Stats: st.Baseline.Stats,
		Zones: st.Baseline.Zones.Clone(),
	}
	s.history = make([]AppliedScenario, len(st.History))
	copy(s.history, st.History)
}
