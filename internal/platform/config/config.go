// Package config loads the server configuration from a YAML file with
// sane defaults and a small set of environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Tuning     TuningConfig     `yaml:"tuning"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"` // empty = admin routes open
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // "sqlite" or "postgres"
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// SimulationConfig seeds the engine for a fresh database.
type SimulationConfig struct {
	StartYear       int                   `yaml:"start_year"`
	Speed           float64               `yaml:"speed"`
	AutosaveSeconds int                   `yaml:"autosave_seconds"`
	SeedStats       city.Statistics       `yaml:"seed_stats"`
	SeedZones       city.ZoneDistribution `yaml:"seed_zones"`
}

// TelemetryConfig configures the optional Kafka stats publisher.
type TelemetryConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// TuningConfig selects the concurrency tuning profile.
type TuningConfig struct {
	Profile string `yaml:"profile"` // "default", "stress", "low"
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "ciudad.db",
		},
		Simulation: SimulationConfig{
			StartYear:       2025,
			Speed:           1.0,
			AutosaveSeconds: 5,
			SeedStats: city.Statistics{
				Population:          500000,
				SustainabilityScore: 65,
				CarbonFootprint:     10,
				EnergyEfficiency:    60,
				GreenCoverage:       22,
				TransitScore:        55,
				Walkability:         58,
				AirQuality:          70,
				EnergyConsumption:   100,
			},
			SeedZones: city.ZoneDistribution{
				city.ZoneEmpty:       120,
				city.ZoneResidential: 40,
				city.ZoneCommercial:  12,
				city.ZoneIndustrial:  8,
				city.ZoneGreen:       10,
				city.ZoneTransit:     6,
				city.ZoneRoad:        24,
			},
		},
		Telemetry: TelemetryConfig{
			Topic: "ciudad.steps",
		},
		Tuning: TuningConfig{
			Profile: "default",
		},
	}
}

// Load reads the YAML file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides a handful of fields from the environment. Used by
// container deployments where a config file is inconvenient.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CIUDAD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CIUDAD_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("CIUDAD_DB_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CIUDAD_DB_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("CIUDAD_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CIUDAD_KAFKA_BROKERS"); v != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Brokers = strings.Split(v, ",")
	}
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("postgres backend selected but postgres_dsn is empty")
	}
	if c.Telemetry.Enabled && len(c.Telemetry.Brokers) == 0 {
		return fmt.Errorf("telemetry enabled but no brokers configured")
	}
	return nil
}
