// Package tuning provides concurrency tuning for high load.
// Channel buffers, connection pools and rate limits are grouped into
// named profiles applied at boot.
package tuning

import "runtime"

// Config holds tuned parameters for a deployment profile.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int
	TelemetryBuffer        int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Rate limiting
	MaxCommandsPerSecond int
	MaxClients           int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,
		TelemetryBuffer:        256,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,

		MaxCommandsPerSecond: 20,
		MaxClients:           200,
	}
}

// StressConfig returns aggressive settings for load testing.
func StressConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		BroadcastChannelBuffer: 512,
		ClientSendBuffer:       128,
		TelemetryBuffer:        1024,

		DBMaxOpenConns: numCPU * 8,
		DBMaxIdleConns: numCPU * 4,

		MaxCommandsPerSecond: 100,
		MaxClients:           500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,
		TelemetryBuffer:        32,

		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,

		MaxCommandsPerSecond: 5,
		MaxClients:           20,
	}
}

// ForProfile resolves a profile name from the config file.
func ForProfile(name string) *Config {
	switch name {
	case "stress":
		return StressConfig()
	case "low":
		return LowResourceConfig()
	default:
		return DefaultConfig()
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseSendBuffer    bool
	IncreaseDBConnections bool
	IncreaseTelemetryBuf  bool
	Notes                 []string
}

// Analyze examines a metrics snapshot and returns tuning suggestions.
func Analyze(snapshot map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	if events, ok := snapshot["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write errors detected - check DB connection pool")
		}
	}

	if ws, ok := snapshot["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseSendBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	if tel, ok := snapshot["telemetry"].(map[string]interface{}); ok {
		if dropped, ok := tel["dropped"].(int64); ok && dropped > 0 {
			rec.IncreaseTelemetryBuf = true
			rec.Notes = append(rec.Notes, "Telemetry messages dropped - increase telemetry buffer")
		}
	}

	return rec
}

// Apply modifies a config based on recommendations.
func Apply(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseSendBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns) * 1.5)
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns) * 1.5)
	}
	if rec.IncreaseTelemetryBuf {
		config.TelemetryBuffer *= 2
	}
	return config
}
