package rules

import (
	"testing"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

func TestSustainabilityRatingBuckets(t *testing.T) {
	cases := []struct {
		score int
		want  Rating
	}{
		{100, RatingExcellent},
		{90, RatingExcellent},
		{89, RatingGood},
		{75, RatingGood},
		{74, RatingFair},
		{60, RatingFair},
		{59, RatingPoor},
		{40, RatingPoor},
		{0, RatingPoor},
	}

	for _, c := range cases {
		if got := SustainabilityRating(c.score); got != c.want {
			t.Errorf("Expected rating %s for score %d, got %s", c.want, c.score, got)
		}
	}
}

func TestCarbonViewLabels(t *testing.T) {
	cases := []struct {
		value      int
		wantLabel  string
		wantRating Rating
	}{
		{-25, "-25%", RatingExcellent},
		{-20, "-20%", RatingExcellent},
		{-19, "-19%", RatingGood},
		{0, "0%", RatingGood},
		{1, "+1%", RatingFair},
		{20, "+20%", RatingFair},
		{21, "+21%", RatingPoor},
	}

	for _, c := range cases {
		view := CarbonView(city.Statistics{CarbonFootprint: c.value})
		if view.Label != c.wantLabel {
			t.Errorf("Expected label %s for carbon %d, got %s", c.wantLabel, c.value, view.Label)
		}
		if view.Rating != c.wantRating {
			t.Errorf("Expected rating %s for carbon %d, got %s", c.wantRating, c.value, view.Rating)
		}
	}
}

func TestAirQualityViewLabels(t *testing.T) {
	cases := []struct {
		value     int
		wantLabel string
	}{
		{95, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Moderate"},
		{40, "Moderate"},
		{39, "Poor"},
		{0, "Poor"},
	}

	for _, c := range cases {
		view := AirQualityView(city.Statistics{AirQuality: c.value})
		if view.Label != c.wantLabel {
			t.Errorf("Expected label %s for air quality %d, got %s", c.wantLabel, c.value, view.Label)
		}
	}
}

func TestPercentageLabels(t *testing.T) {
	stats := city.Statistics{EnergyEfficiency: 60, GreenCoverage: 22, TransitScore: 55, Walkability: 58}

	if got := EnergyEfficiencyView(stats).Label; got != "60%" {
		t.Errorf("Expected 60%%, got %s", got)
	}
	if got := GreenCoverageView(stats).Label; got != "22%" {
		t.Errorf("Expected 22%%, got %s", got)
	}
	if got := TransitScoreView(stats).Label; got != "55" {
		t.Errorf("Expected 55, got %s", got)
	}
	if got := WalkabilityView(stats).Label; got != "58" {
		t.Errorf("Expected 58, got %s", got)
	}
}

func TestCompare(t *testing.T) {
	before := city.Statistics{
		Population:          500000,
		SustainabilityScore: 65,
		CarbonFootprint:     10,
		GreenCoverage:       22,
		TransitScore:        55,
		Walkability:         58,
	}
	after := city.Statistics{
		Population:          500000,
		SustainabilityScore: 75,
		CarbonFootprint:     9,
		GreenCoverage:       37,
		TransitScore:        55,
		Walkability:         63,
	}

	delta := Compare(before, after)

	if delta.Population != 0 {
		t.Errorf("Expected population delta 0, got %d", delta.Population)
	}
	if delta.SustainabilityScore != 10 {
		t.Errorf("Expected sustainability delta 10, got %d", delta.SustainabilityScore)
	}
	if delta.CarbonFootprint != -1 {
		t.Errorf("Expected carbon delta -1, got %d", delta.CarbonFootprint)
	}
	if delta.GreenCoverage != 15 {
		t.Errorf("Expected green coverage delta 15, got %d", delta.GreenCoverage)
	}
	if delta.Walkability != 5 {
		t.Errorf("Expected walkability delta 5, got %d", delta.Walkability)
	}
}

func TestRecommendationsFireInOrder(t *testing.T) {
	// All four rules trip at once.
	stats := city.Statistics{GreenCoverage: 10, TransitScore: 40, Walkability: 30}
	dist := city.ZoneDistribution{city.ZoneIndustrial: 8, city.ZoneGreen: 2}

	recs := Recommendations(stats, dist)

	if len(recs) != 4 {
		t.Fatalf("Expected 4 recommendations, got %d", len(recs))
	}
	wantTitles := []string{
		"Expand Green Spaces",
		"Invest in Public Transit",
		"Improve Walkability",
		"Balance Industrial Zones",
	}
	for i, title := range wantTitles {
		if recs[i].Title != title {
			t.Errorf("Expected recommendation %d to be %q, got %q", i, title, recs[i].Title)
		}
	}
}

func TestRecommendationsSilentWhenHealthy(t *testing.T) {
	stats := city.Statistics{GreenCoverage: 30, TransitScore: 70, Walkability: 60}
	dist := city.ZoneDistribution{city.ZoneIndustrial: 2, city.ZoneGreen: 8}

	recs := Recommendations(stats, dist)

	if len(recs) != 0 {
		t.Errorf("Expected no recommendations for a healthy city, got %d", len(recs))
	}
}

func TestRecommendationsSingleRule(t *testing.T) {
	// Only the transit rule trips.
	stats := city.Statistics{GreenCoverage: 30, TransitScore: 59, Walkability: 60}
	dist := city.ZoneDistribution{city.ZoneIndustrial: 2, city.ZoneGreen: 8}

	recs := Recommendations(stats, dist)

	if len(recs) != 1 || recs[0].Title != "Invest in Public Transit" {
		t.Fatalf("Expected only the transit recommendation, got %v", recs)
	}
}
