package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Expected default backend sqlite, got %s", cfg.Storage.Backend)
	}
	if cfg.Simulation.StartYear != 2025 {
		t.Errorf("Expected default start year 2025, got %d", cfg.Simulation.StartYear)
	}
	if cfg.Simulation.SeedStats.Population != 500000 {
		t.Errorf("Expected default seed population 500000, got %d", cfg.Simulation.SeedStats.Population)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9090"
simulation:
  start_year: 2030
  seed_zones:
    residential: 55
    green: 12
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Simulation.StartYear != 2030 {
		t.Errorf("Expected start year 2030, got %d", cfg.Simulation.StartYear)
	}
	if cfg.Simulation.SeedZones[city.ZoneResidential] != 55 {
		t.Errorf("Expected 55 residential cells, got %d", cfg.Simulation.SeedZones[city.ZoneResidential])
	}
	// Untouched sections keep their defaults.
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Expected backend to stay sqlite, got %s", cfg.Storage.Backend)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: etcd\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("Expected an error for an unknown backend")
	}
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("Expected an error for postgres without a DSN")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CIUDAD_ADDR", ":7070")
	t.Setenv("CIUDAD_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Expected env addr :7070, got %s", cfg.Server.Addr)
	}
	if !cfg.Telemetry.Enabled {
		t.Errorf("Expected telemetry enabled by the broker env var")
	}
	if len(cfg.Telemetry.Brokers) != 2 || cfg.Telemetry.Brokers[1] != "k2:9092" {
		t.Errorf("Expected two brokers from the env var, got %v", cfg.Telemetry.Brokers)
	}
}
