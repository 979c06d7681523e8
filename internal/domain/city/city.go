// Package city holds the shared statistics record and zone distribution
// that the simulation engine mutates and the metrics rules read.
// This package is PURE and must NOT import any infrastructure packages.
package city

import "math"

// Statistics is the flat record of city-wide metrics.
// Bounded fields (sustainability, efficiency, coverage, transit,
// walkability, air quality) always hold integers in [0,100].
// Population, carbon footprint and energy consumption are unbounded.
type Statistics struct {
	Population          int `json:"population"`
	SustainabilityScore int `json:"sustainabilityScore"`
	CarbonFootprint     int `json:"carbonFootprint"`
	EnergyEfficiency    int `json:"energyEfficiency"`
	GreenCoverage       int `json:"greenCoverage"`
	TransitScore        int `json:"transitScore"`
	Walkability         int `json:"walkability"`
	AirQuality          int `json:"airQuality"`
	EnergyConsumption   int `json:"energyConsumption"`
}

// ZoneKind identifies one of the fixed grid zone categories.
type ZoneKind string

const (
	ZoneEmpty       ZoneKind = "empty"
	ZoneResidential ZoneKind = "residential"
	ZoneCommercial  ZoneKind = "commercial"
	ZoneIndustrial  ZoneKind = "industrial"
	ZoneGreen       ZoneKind = "green"
	ZoneTransit     ZoneKind = "transit"
	ZoneRoad        ZoneKind = "road"
)

// BuiltZones is the fixed display order of the non-empty zone kinds.
var BuiltZones = []ZoneKind{
	ZoneResidential,
	ZoneCommercial,
	ZoneIndustrial,
	ZoneGreen,
	ZoneTransit,
	ZoneRoad,
}

// ZoneDistribution maps a zone kind to its cell count on the grid.
// Owned by the external city model; the engine only reads it.
type ZoneDistribution map[ZoneKind]int

// Clone returns an independent copy of the distribution.
func (d ZoneDistribution) Clone() ZoneDistribution {
	out := make(ZoneDistribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Total returns the sum of all zone counts.
func (d ZoneDistribution) Total() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// ClampScore rounds a raw metric value to the nearest integer and
// clamps it into the [0,100] band every bounded metric lives in.
func ClampScore(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Round rounds an unbounded metric value to the nearest integer.
func Round(v float64) int {
	return int(math.Round(v))
}
