package rules

import (
	"testing"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

func TestZoneBreakdownSharesAndOrder(t *testing.T) {
	// Empty cells inflate the grid but must not dilute the shares.
	dist := city.ZoneDistribution{
		city.ZoneEmpty:       150,
		city.ZoneResidential: 40,
		city.ZoneCommercial:  10,
		city.ZoneIndustrial:  5,
		city.ZoneGreen:       20,
		city.ZoneTransit:     5,
		city.ZoneRoad:        20,
	}

	b := BuildZoneBreakdown(dist)

	wantLabels := []string{"Residential", "Commercial", "Industrial", "Green Space", "Transit", "Roads"}
	wantData := []int{40, 10, 5, 20, 5, 20}

	if len(b.Labels) != len(wantLabels) {
		t.Fatalf("Expected %d entries, got %d", len(wantLabels), len(b.Labels))
	}
	for i := range wantLabels {
		if b.Labels[i] != wantLabels[i] {
			t.Errorf("Expected label %d to be %s, got %s", i, wantLabels[i], b.Labels[i])
		}
		if b.Data[i] != wantData[i] {
			t.Errorf("Expected %s share %d%%, got %d%%", wantLabels[i], wantData[i], b.Data[i])
		}
	}
	if len(b.Colors) != len(b.Labels) {
		t.Errorf("Expected one color per label, got %d colors for %d labels", len(b.Colors), len(b.Labels))
	}
}

func TestZoneBreakdownSkipsAbsentKinds(t *testing.T) {
	dist := city.ZoneDistribution{
		city.ZoneResidential: 30,
		city.ZoneGreen:       10,
	}

	b := BuildZoneBreakdown(dist)

	if len(b.Labels) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(b.Labels), b.Labels)
	}
	if b.Labels[0] != "Residential" || b.Labels[1] != "Green Space" {
		t.Errorf("Expected [Residential, Green Space], got %v", b.Labels)
	}
	if b.Data[0] != 75 || b.Data[1] != 25 {
		t.Errorf("Expected shares [75, 25], got %v", b.Data)
	}
}

func TestZoneBreakdownEmptyGrid(t *testing.T) {
	cases := []city.ZoneDistribution{
		nil,
		{},
		{city.ZoneEmpty: 200},
	}

	for _, dist := range cases {
		b := BuildZoneBreakdown(dist)
		if len(b.Labels) != 0 || len(b.Data) != 0 || len(b.Colors) != 0 {
			t.Errorf("Expected empty breakdown for %v, got %v", dist, b)
		}
		// Slices must be present (not nil) so the JSON encodes as [].
		if b.Labels == nil || b.Data == nil || b.Colors == nil {
			t.Errorf("Expected initialized slices for %v", dist)
		}
	}
}
