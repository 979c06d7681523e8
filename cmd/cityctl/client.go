// Package main - client.go
// Thin HTTP client and table formatting for the cityctl commands.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/rules"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/engine"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func get(path string, out interface{}) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, out)
}

func post(path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	resp, err := httpClient.Post(serverURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, out)
}

func decodeResponse(resp *http.Response, path string, out interface{}) error {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", path, apiErr.Error)
		}
		return fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runStatus() error {
	var status struct {
		Year       int     `json:"year"`
		TargetYear int     `json:"targetYear"`
		Speed      float64 `json:"speed"`
		Running    bool    `json:"running"`
		Scenarios  int     `json:"scenarios"`
	}
	if err := get("/api/v1/status", &status); err != nil {
		return err
	}

	state := "idle"
	if status.Running {
		state = fmt.Sprintf("running toward %d", status.TargetYear)
	}
	fmt.Printf("Year:      %d\n", status.Year)
	fmt.Printf("State:     %s\n", state)
	fmt.Printf("Speed:     %.2f years/s\n", status.Speed)
	fmt.Printf("Scenarios: %d applied\n", status.Scenarios)
	return nil
}

func runScenarios() error {
	var list []engine.ScenarioInfo
	if err := get("/api/v1/scenarios", &list); err != nil {
		return err
	}

	for _, sc := range list {
		fmt.Printf("%-20s %s\n", sc.ID, sc.Name)
		fmt.Printf("%-20s   %s\n", "", sc.Description)
	}
	return nil
}

func runApply(id string) error {
	var reply struct {
		Result engine.ScenarioResult `json:"result"`
		Diff   rules.StatsDelta      `json:"diff"`
	}
	if err := post("/api/v1/scenarios/"+id+"/apply", nil, &reply); err != nil {
		return err
	}

	fmt.Printf("Applied: %s\n\n", reply.Result.Scenario.Name)
	printDelta("population", reply.Diff.Population)
	printDelta("sustainabilityScore", reply.Diff.SustainabilityScore)
	printDelta("carbonFootprint", reply.Diff.CarbonFootprint)
	printDelta("greenCoverage", reply.Diff.GreenCoverage)
	printDelta("transitScore", reply.Diff.TransitScore)
	printDelta("walkability", reply.Diff.Walkability)
	return nil
}

func printDelta(name string, delta int) {
	if delta == 0 {
		return
	}
	fmt.Printf("  %-22s %+d\n", name, delta)
}

func runSimulate(targetYear int) error {
	var reply struct {
		Status     string `json:"status"`
		TargetYear int    `json:"targetYear"`
	}
	if err := post("/api/v1/simulate", map[string]int{"targetYear": targetYear}, &reply); err != nil {
		return err
	}
	fmt.Printf("Run started toward %d. Watch progress with `cityctl status`.\n", reply.TargetYear)
	return nil
}

func runStop() error {
	if err := post("/api/v1/simulate/stop", nil, nil); err != nil {
		return err
	}
	fmt.Println("Stop requested; the run halts at the next year boundary.")
	return nil
}

func runProject(year int) error {
	var proj engine.Projection
	if err := get(fmt.Sprintf("/api/v1/projection?year=%d", year), &proj); err != nil {
		return err
	}

	fmt.Printf("Projection for %d:\n", proj.Year)
	fmt.Printf("  Population:      %d\n", proj.Population)
	fmt.Printf("  Sustainability:  %.1f\n", proj.SustainabilityScore)
	fmt.Printf("  CarbonFootprint: %d\n", proj.CarbonFootprint)
	return nil
}

func runTimeline() error {
	var timeline []engine.TimelineEvent
	if err := get("/api/v1/timeline", &timeline); err != nil {
		return err
	}

	for _, ev := range timeline {
		fmt.Printf("%d  [%-8s]  %s\n", ev.Year, ev.Kind, ev.Event)
	}
	return nil
}

func runMetrics() error {
	var overview rules.Overview
	if err := get("/api/v1/metrics/overview", &overview); err != nil {
		return err
	}

	printMetric("Sustainability", overview.Sustainability)
	printMetric("Carbon footprint", overview.CarbonFootprint)
	printMetric("Air quality", overview.AirQuality)
	printMetric("Energy efficiency", overview.EnergyEfficiency)
	printMetric("Green coverage", overview.GreenCoverage)
	printMetric("Transit score", overview.TransitScore)
	printMetric("Walkability", overview.Walkability)

	if len(overview.Zones.Labels) > 0 {
		fmt.Println("\nZone mix (built tiles):")
		for i, label := range overview.Zones.Labels {
			fmt.Printf("  %-14s %d%%\n", label, overview.Zones.Data[i])
		}
	}
	return nil
}

func printMetric(name string, view rules.MetricView) {
	if view.Rating != "" {
		fmt.Printf("%-18s %-8s (%s)\n", name, view.Label, view.Rating)
		return
	}
	fmt.Printf("%-18s %s\n", name, view.Label)
}
