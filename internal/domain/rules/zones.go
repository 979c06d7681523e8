package rules

import (
	"math"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

// zoneDisplay carries the chart name and color for a zone kind.
type zoneDisplay struct {
	Name  string
	Color string
}

var zoneDisplays = map[city.ZoneKind]zoneDisplay{
	city.ZoneResidential: {Name: "Residential", Color: "#60a5fa"},
	city.ZoneCommercial:  {Name: "Commercial", Color: "#f59e0b"},
	city.ZoneIndustrial:  {Name: "Industrial", Color: "#9ca3af"},
	city.ZoneGreen:       {Name: "Green Space", Color: "#34d399"},
	city.ZoneTransit:     {Name: "Transit", Color: "#a78bfa"},
	city.ZoneRoad:        {Name: "Roads", Color: "#6b7280"},
}

// ZoneBreakdown is the percentage share of each built zone kind,
// shaped as parallel label/data/color sequences for chart widgets.
type ZoneBreakdown struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Colors []string `json:"colors"`
}

// BuildZoneBreakdown computes the built-zone shares. Empty cells are
// excluded from the denominator; zones with zero count are skipped.
// Shares are rounded independently and not normalized to sum to 100.
func BuildZoneBreakdown(dist city.ZoneDistribution) ZoneBreakdown {
	denominator := dist.Total() - dist[city.ZoneEmpty]

	bd := ZoneBreakdown{
		Labels: []string{},
		Data:   []int{},
		Colors: []string{},
	}
	if denominator <= 0 {
		return bd
	}

	for _, kind := range city.BuiltZones {
		count := dist[kind]
		if count <= 0 {
			continue
		}
		display := zoneDisplays[kind]
		share := int(math.Round(float64(count) / float64(denominator) * 100))

		bd.Labels = append(bd.Labels, display.Name)
		bd.Data = append(bd.Data, share)
		bd.Colors = append(bd.Colors, display.Color)
	}
	return bd
}
