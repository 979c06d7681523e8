// Package scenario defines the catalog of named, one-shot statistical
// interventions a planner can apply to the city.
//
// Modifiers are pure functions over a snapshot of the statistics. They
// never touch shared state; the engine decides which of their outputs
// get written back.
package scenario

// Snapshot is the read-only input handed to a scenario modifier.
// It carries the eight statistics fields plus two synthesized ones:
// TrafficDensity is fixed at 50 and EnergyDemand aliases the city's
// energy consumption.
type Snapshot struct {
	Population          float64
	SustainabilityScore float64
	CarbonFootprint     float64
	EnergyEfficiency    float64
	GreenCoverage       float64
	TransitScore        float64
	Walkability         float64
	AirQuality          float64
	TrafficDensity      float64
	EnergyDemand        float64
}

// Field names a statistic a modifier can change.
type Field string

const (
	FieldPopulation          Field = "population"
	FieldSustainabilityScore Field = "sustainabilityScore"
	FieldCarbonFootprint     Field = "carbonFootprint"
	FieldEnergyEfficiency    Field = "energyEfficiency"
	FieldGreenCoverage       Field = "greenCoverage"
	FieldTransitScore        Field = "transitScore"
	FieldWalkability         Field = "walkability"
	FieldAirQuality          Field = "airQuality"
	FieldTrafficDensity      Field = "trafficDensity"
	FieldEnergyDemand        Field = "energyDemand"
)

// Changes is the set of field values a modifier provides. A field
// absent from the map keeps its prior value; a field present with
// value zero is a legitimate result and IS written back.
type Changes map[Field]float64

// Modifier transforms a statistics snapshot into a set of changes.
type Modifier func(s Snapshot) Changes

// Scenario is a static intervention definition.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Modifier    Modifier
}

// Catalog is the fixed registry of scenarios, keyed by id.
type Catalog struct {
	byID  map[string]*Scenario
	order []string
}

// NewCatalog builds the default catalog of six interventions.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]*Scenario)}
	for _, sc := range defaultScenarios() {
		c.byID[sc.ID] = sc
		c.order = append(c.order, sc.ID)
	}
	return c
}

// Get returns the scenario for an id, or nil if no such scenario exists.
func (c *Catalog) Get(id string) *Scenario {
	return c.byID[id]
}

// List returns the scenarios in their fixed catalog order.
func (c *Catalog) List() []*Scenario {
	out := make([]*Scenario, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func defaultScenarios() []*Scenario {
	return []*Scenario{
		{
			ID:          "add-green-space",
			Name:        "Add Green Spaces",
			Description: "Convert underused lots into parks and urban forest patches.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldGreenCoverage:       s.GreenCoverage + 15,
					FieldAirQuality:          s.AirQuality + 8,
					FieldSustainabilityScore: s.SustainabilityScore + 10,
					FieldWalkability:         s.Walkability + 5,
				}
			},
		},
		{
			ID:          "add-transit",
			Name:        "Expand Public Transit",
			Description: "Add bus rapid transit corridors and increase service frequency.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldTransitScore:    s.TransitScore + 15,
					FieldTrafficDensity:  s.TrafficDensity * 0.8,
					FieldCarbonFootprint: s.CarbonFootprint * 0.9,
				}
			},
		},
		{
			ID:          "green-energy",
			Name:        "Green Energy Transition",
			Description: "Shift the municipal grid towards solar and wind generation.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldEnergyEfficiency:    s.EnergyEfficiency + 20,
					FieldCarbonFootprint:     s.CarbonFootprint - 15,
					FieldSustainabilityScore: s.SustainabilityScore + 12,
					FieldEnergyDemand:        s.EnergyDemand * 0.85,
				}
			},
		},
		{
			ID:          "densify-housing",
			Name:        "Densify Housing",
			Description: "Allow mid-rise infill housing near existing services.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldPopulation:     s.Population * 1.1,
					FieldWalkability:    s.Walkability + 8,
					FieldTrafficDensity: s.TrafficDensity + 15,
				}
			},
		},
		{
			ID:          "car-free-center",
			Name:        "Car-Free Center",
			Description: "Close the inner core to private cars and reclaim street space.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldAirQuality:      s.AirQuality + 15,
					FieldWalkability:     s.Walkability + 18,
					FieldTransitScore:    s.TransitScore + 8,
					FieldTrafficDensity:  s.TrafficDensity * 0.5,
					FieldCarbonFootprint: s.CarbonFootprint * 0.85,
				}
			},
		},
		{
			ID:          "smart-grid",
			Name:        "Smart Grid Rollout",
			Description: "Deploy demand-response metering across all districts.",
			Modifier: func(s Snapshot) Changes {
				return Changes{
					FieldEnergyEfficiency:    s.EnergyEfficiency + 15,
					FieldEnergyDemand:        s.EnergyDemand * 0.9,
					FieldSustainabilityScore: s.SustainabilityScore + 5,
				}
			},
		},
	}
}
