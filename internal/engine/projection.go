package engine

import (
	"math"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

const (
	// growthRate is the compound yearly population growth.
	growthRate = 0.015
	// degradationRate drives the slow decay of air quality and walkability.
	degradationRate = 0.005

	minAirQuality  = 30
	minWalkability = 20
)

// projectStats recomputes the four baseline-relative fields for a given
// year. Population, air quality, walkability and carbon footprint are
// always derived from the baseline and the elapsed years, never from
// the previous step, so stepping is not path dependent.
func projectStats(base Baseline, year int, current city.Statistics) city.Statistics {
	elapsed := float64(year - base.Year)
	out := current

	out.Population = city.Round(float64(base.Stats.Population) * math.Pow(1+growthRate, elapsed))

	aq := city.Round(float64(base.Stats.AirQuality) * (1 - degradationRate*elapsed*0.5))
	if aq < minAirQuality {
		aq = minAirQuality
	}
	out.AirQuality = aq

	walk := city.Round(float64(base.Stats.Walkability) * (1 - degradationRate*elapsed*0.3))
	if walk < minWalkability {
		walk = minWalkability
	}
	out.Walkability = walk

	out.CarbonFootprint = city.Round(float64(base.Stats.CarbonFootprint) + elapsed*0.5)

	return out
}

// Projection is a preview of where the headline numbers land at a given
// year. SustainabilityScore uses a linear-decay variant that is never
// applied to live state; it may be fractional.
type Projection struct {
	Year                int     `json:"year"`
	Population          int     `json:"population"`
	SustainabilityScore float64 `json:"sustainabilityScore"`
	CarbonFootprint     int     `json:"carbonFootprint"`
}

// Projection computes a pure, non-mutating preview for a year. It reads
// only the baseline; live statistics and history are untouched.
func (s *Simulator) Projection(year int) Projection {
	s.mu.Lock()
	base := s.baseline
	s.mu.Unlock()

	elapsed := float64(year - base.Year)

	sustainability := float64(base.Stats.SustainabilityScore) - elapsed*0.5
	if sustainability < 0 {
		sustainability = 0
	}

	return Projection{
		Year:                year,
		Population:          city.Round(float64(base.Stats.Population) * math.Pow(1+growthRate, elapsed)),
		SustainabilityScore: sustainability,
		CarbonFootprint:     city.Round(float64(base.Stats.CarbonFootprint) + elapsed*0.5),
	}
}
