package rules

import "github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"

// Recommendation is one piece of advisory text for the planner.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Recommendations evaluates the four advisory rules in fixed order.
// The rules are independent: none, some or all of them may fire, and
// the returned order is the display order.
func Recommendations(stats city.Statistics, dist city.ZoneDistribution) []Recommendation {
	recs := make([]Recommendation, 0, 4)

	if stats.GreenCoverage < 25 {
		recs = append(recs, Recommendation{
			Title:       "Expand Green Spaces",
			Description: "Green coverage is below 25%. Adding parks and street trees improves air quality and livability.",
			Impact:      "+10 sustainability",
		})
	}

	if stats.TransitScore < 60 {
		recs = append(recs, Recommendation{
			Title:       "Invest in Public Transit",
			Description: "Transit access is limited. More routes and higher frequency cut traffic and emissions.",
			Impact:      "+15 transit score",
		})
	}

	if stats.Walkability < 50 {
		recs = append(recs, Recommendation{
			Title:       "Improve Walkability",
			Description: "The street network favors cars. Wider sidewalks and mixed-use blocks make trips walkable.",
			Impact:      "+12 walkability",
		})
	}

	if dist[city.ZoneIndustrial] > dist[city.ZoneGreen] {
		recs = append(recs, Recommendation{
			Title:       "Balance Industrial Zones",
			Description: "Industrial zones outnumber green zones. Buffer heavy uses with parkland to offset emissions.",
			Impact:      "-8% carbon footprint",
		})
	}

	return recs
}
