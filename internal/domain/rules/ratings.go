// Package rules contains the pure derivation logic that turns raw city
// statistics into display-ready ratings, labels and advice.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"fmt"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

// Rating buckets a metric into a coarse quality band.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
)

// MetricView is a single metric prepared for display.
type MetricView struct {
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Rating Rating `json:"rating,omitempty"`
}

// SustainabilityRating buckets the sustainability score.
// Anything below 60 is poor; there is no separate lower boundary.
func SustainabilityRating(score int) Rating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	default:
		return RatingPoor
	}
}

// SustainabilityView returns the sustainability score with its rating.
func SustainabilityView(stats city.Statistics) MetricView {
	return MetricView{
		Value:  stats.SustainabilityScore,
		Label:  fmt.Sprintf("%d", stats.SustainabilityScore),
		Rating: SustainabilityRating(stats.SustainabilityScore),
	}
}

// CarbonView buckets the signed carbon footprint percentage.
// Negative values are reductions relative to the reference city.
func CarbonView(stats city.Statistics) MetricView {
	v := stats.CarbonFootprint

	var rating Rating
	switch {
	case v <= -20:
		rating = RatingExcellent
	case v <= 0:
		rating = RatingGood
	case v <= 20:
		rating = RatingFair
	default:
		rating = RatingPoor
	}

	label := fmt.Sprintf("%d%%", v)
	if v > 0 {
		label = fmt.Sprintf("+%d%%", v)
	}

	return MetricView{Value: v, Label: label, Rating: rating}
}

// AirQualityView buckets air quality with its human-facing text label.
func AirQualityView(stats city.Statistics) MetricView {
	v := stats.AirQuality

	var rating Rating
	var label string
	switch {
	case v >= 80:
		rating, label = RatingExcellent, "Excellent"
	case v >= 60:
		rating, label = RatingGood, "Good"
	case v >= 40:
		rating, label = RatingFair, "Moderate"
	default:
		rating, label = RatingPoor, "Poor"
	}

	return MetricView{Value: v, Label: label, Rating: rating}
}

// EnergyEfficiencyView returns the efficiency as a percentage label.
func EnergyEfficiencyView(stats city.Statistics) MetricView {
	return MetricView{Value: stats.EnergyEfficiency, Label: fmt.Sprintf("%d%%", stats.EnergyEfficiency)}
}

// GreenCoverageView returns the coverage as a percentage label.
func GreenCoverageView(stats city.Statistics) MetricView {
	return MetricView{Value: stats.GreenCoverage, Label: fmt.Sprintf("%d%%", stats.GreenCoverage)}
}

// TransitScoreView returns the transit score as a plain number label.
func TransitScoreView(stats city.Statistics) MetricView {
	return MetricView{Value: stats.TransitScore, Label: fmt.Sprintf("%d", stats.TransitScore)}
}

// WalkabilityView returns walkability as a plain number label.
func WalkabilityView(stats city.Statistics) MetricView {
	return MetricView{Value: stats.Walkability, Label: fmt.Sprintf("%d", stats.Walkability)}
}

// StatsDelta is the per-field difference between two statistics records.
type StatsDelta struct {
	SustainabilityScore int `json:"sustainabilityScore"`
	CarbonFootprint     int `json:"carbonFootprint"`
	GreenCoverage       int `json:"greenCoverage"`
	TransitScore        int `json:"transitScore"`
	Walkability         int `json:"walkability"`
	Population          int `json:"population"`
}

// Compare diffs the six headline fields as after minus before.
func Compare(before, after city.Statistics) StatsDelta {
	return StatsDelta{
		SustainabilityScore: after.SustainabilityScore - before.SustainabilityScore,
		CarbonFootprint:     after.CarbonFootprint - before.CarbonFootprint,
		GreenCoverage:       after.GreenCoverage - before.GreenCoverage,
		TransitScore:        after.TransitScore - before.TransitScore,
		Walkability:         after.Walkability - before.Walkability,
		Population:          after.Population - before.Population,
	}
}

// Overview assembles every derived view for one statistics record.
type Overview struct {
	Sustainability   MetricView    `json:"sustainability"`
	CarbonFootprint  MetricView    `json:"carbonFootprint"`
	AirQuality       MetricView    `json:"airQuality"`
	EnergyEfficiency MetricView    `json:"energyEfficiency"`
	GreenCoverage    MetricView    `json:"greenCoverage"`
	TransitScore     MetricView    `json:"transitScore"`
	Walkability      MetricView    `json:"walkability"`
	Zones            ZoneBreakdown `json:"zones"`
}

// BuildOverview derives the full presentation snapshot for the API layer.
func BuildOverview(stats city.Statistics, dist city.ZoneDistribution) Overview {
	return Overview{
		Sustainability:   SustainabilityView(stats),
		CarbonFootprint:  CarbonView(stats),
		AirQuality:       AirQualityView(stats),
		EnergyEfficiency: EnergyEfficiencyView(stats),
		GreenCoverage:    GreenCoverageView(stats),
		TransitScore:     TransitScoreView(stats),
		Walkability:      WalkabilityView(stats),
		Zones:            BuildZoneBreakdown(dist),
	}
}
