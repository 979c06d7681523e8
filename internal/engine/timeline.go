package engine

import "sort"

// TimelineEventKind classifies a timeline entry.
type TimelineEventKind string

const (
	TimelineStart    TimelineEventKind = "start"
	TimelineScenario TimelineEventKind = "scenario"
	TimelineCurrent  TimelineEventKind = "current"
)

// TimelineEvent is one entry of the derived, year-ordered timeline.
type TimelineEvent struct {
	Year  int               `json:"year"`
	Event string            `json:"event"`
	Kind  TimelineEventKind `json:"kind"`
}

// Timeline merges the baseline marker, the scenario history and the
// current-year marker into one sequence sorted ascending by year.
// The sort is stable, so same-year entries keep insertion order.
func (s *Simulator) Timeline() []TimelineEvent {
	s.mu.Lock()
	baselineYear := s.baseline.Year
	currentYear := s.currentYear
	history := make([]AppliedScenario, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	timeline := make([]TimelineEvent, 0, len(history)+2)
	timeline = append(timeline, TimelineEvent{
		Year:  baselineYear,
		Event: "Baseline captured",
		Kind:  TimelineStart,
	})
	for _, h := range history {
		timeline = append(timeline, TimelineEvent{
			Year:  h.AppliedAt,
			Event: h.Name,
			Kind:  TimelineScenario,
		})
	}
	timeline = append(timeline, TimelineEvent{
		Year:  currentYear,
		Event: "Current year",
		Kind:  TimelineCurrent,
	})

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Year < timeline[j].Year
	})
	return timeline
}
