package scenario

import "testing"

func TestCatalogContents(t *testing.T) {
	c := NewCatalog()

	list := c.List()
	if len(list) != 6 {
		t.Fatalf("Expected 6 scenarios in the catalog, got %d", len(list))
	}

	wantOrder := []string{
		"add-green-space",
		"add-transit",
		"green-energy",
		"densify-housing",
		"car-free-center",
		"smart-grid",
	}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("Expected scenario %d to be %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestCatalogGetUnknown(t *testing.T) {
	c := NewCatalog()

	if sc := c.Get("terraform-mars"); sc != nil {
		t.Errorf("Expected nil for unknown scenario, got %s", sc.ID)
	}
}

func TestAddTransitModifier(t *testing.T) {
	// Setup
	c := NewCatalog()
	sc := c.Get("add-transit")
	if sc == nil {
		t.Fatalf("add-transit missing from catalog")
	}

	// Act
	changes := sc.Modifier(Snapshot{
		TransitScore:    55,
		TrafficDensity:  50,
		CarbonFootprint: 10,
	})

	// Assert
	if got := changes[FieldTransitScore]; got != 70 {
		t.Errorf("Expected transitScore 70, got %v", got)
	}
	if got := changes[FieldTrafficDensity]; got != 40 {
		t.Errorf("Expected trafficDensity 40, got %v", got)
	}
	if got := changes[FieldCarbonFootprint]; got != 9 {
		t.Errorf("Expected carbonFootprint 9, got %v", got)
	}
	if _, ok := changes[FieldPopulation]; ok {
		t.Errorf("add-transit must not touch population")
	}
}

func TestExplicitZeroIsProvided(t *testing.T) {
	// A modifier result that lands exactly on zero must still count as
	// provided, so the engine writes it instead of keeping the old value.
	c := NewCatalog()
	sc := c.Get("green-energy")

	changes := sc.Modifier(Snapshot{CarbonFootprint: 15})

	v, ok := changes[FieldCarbonFootprint]
	if !ok {
		t.Fatalf("Expected carbonFootprint to be present in changes")
	}
	if v != 0 {
		t.Errorf("Expected carbonFootprint 0, got %v", v)
	}
}

func TestModifiersArePure(t *testing.T) {
	c := NewCatalog()
	snap := Snapshot{
		Population:      500000,
		TransitScore:    55,
		TrafficDensity:  50,
		CarbonFootprint: 10,
	}

	first := c.Get("add-transit").Modifier(snap)
	second := c.Get("add-transit").Modifier(snap)

	if len(first) != len(second) {
		t.Fatalf("Expected identical change sets, got %d and %d entries", len(first), len(second))
	}
	for field, v := range first {
		if second[field] != v {
			t.Errorf("Expected %s=%v on repeat application, got %v", field, v, second[field])
		}
	}
}
