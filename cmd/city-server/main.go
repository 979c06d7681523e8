// Package main is the entry point for the CiudadGemela simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/scenario"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/engine"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/events"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/infra/storage"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/infra/telemetry"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/network"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/config"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/tuning"
)

// persisterAdapter translates domain events to storage events and
// records write latency for the metrics collector.
type persisterAdapter struct {
	repo storage.EventRepository
}

func (a *persisterAdapter) Append(event events.SimEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	start := time.Now()
	err := a.repo.Append(context.Background(), storage.SimEvent{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Source:    event.Source,
		Year:      event.Year,
		Payload:   payloadMap,
	})
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	appLogger := logger.New()
	defer appLogger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Error("failed to load config: %v", err)
		os.Exit(1)
	}
	tun := tuning.ForProfile(cfg.Tuning.Profile)

	appLogger.Info("initializing %s storage backend...", cfg.Storage.Backend)
	var (
		eventRepo storage.EventRepository
		snapRepo  storage.SnapshotRepository
		statsRepo storage.StatsHistoryRepository
	)
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := storage.InitPostgres(cfg.Storage.PostgresDSN, tun.DBMaxOpenConns, tun.DBMaxIdleConns)
		if err != nil {
			appLogger.Error("failed to initialize postgres: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		eventRepo = storage.NewPostgresEventRepository(db)
		snapRepo = storage.NewPostgresSnapshotRepository(db)
		statsRepo = storage.NewPostgresStatsRepository(db)
	default:
		db, err := storage.InitSQLite(cfg.Storage.SQLitePath, tun.DBMaxOpenConns, tun.DBMaxIdleConns)
		if err != nil {
			appLogger.Error("failed to initialize sqlite: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		eventRepo = storage.NewSQLiteEventRepository(db)
		snapRepo = storage.NewSQLiteSnapshotRepository(db)
		statsRepo = storage.NewSQLiteStatsRepository(db)
	}

	appLogger.Info("bootstrapping event log...")
	eventLog := events.NewEventLog(&persisterAdapter{repo: eventRepo})

	catalog := scenario.NewCatalog()
	sim := engine.NewSimulator(catalog, eventLog, appLogger,
		cfg.Simulation.SeedStats, cfg.Simulation.SeedZones, cfg.Simulation.StartYear)
	sim.SetSpeed(cfg.Simulation.Speed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore previous state, or persist the seed as the baseline on a
	// fresh database.
	reconstructor := storage.NewReconstructor(eventRepo, snapRepo, appLogger)
	restored, err := reconstructor.Restore(ctx)
	if err != nil {
		appLogger.Error("failed to restore state: %v", err)
		os.Exit(1)
	}
	if restored != nil {
		sim.RestoreState(*restored)
	} else {
		appLogger.Info("fresh database, seeding baseline from config")
		if payload, err := json.Marshal(sim.State()); err == nil {
			if err := snapRepo.Upsert(ctx, "baseline", payload); err != nil {
				appLogger.Warn("failed to persist baseline snapshot: %v", err)
			}
		}
	}

	// Optional Kafka telemetry publisher.
	var publisher *telemetry.Publisher
	if cfg.Telemetry.Enabled {
		appLogger.Info("bootstrapping telemetry publisher (brokers: %v)...", cfg.Telemetry.Brokers)
		publisher = telemetry.New(cfg.Telemetry.Brokers, cfg.Telemetry.Topic, tun.TelemetryBuffer, appLogger)
		go publisher.Run(ctx)
		defer publisher.Close()
	}

	// onStep persists one stats row per simulated year and feeds the
	// telemetry publisher. The hub broadcasts steps independently via
	// its event poller.
	onStep := func(year int, stats city.Statistics) {
		row := storage.StatsRow{
			Year:                year,
			Population:          stats.Population,
			SustainabilityScore: stats.SustainabilityScore,
			CarbonFootprint:     stats.CarbonFootprint,
			EnergyEfficiency:    stats.EnergyEfficiency,
			GreenCoverage:       stats.GreenCoverage,
			TransitScore:        stats.TransitScore,
			Walkability:         stats.Walkability,
			AirQuality:          stats.AirQuality,
			EnergyConsumption:   stats.EnergyConsumption,
			RecordedAt:          time.Now(),
		}
		if err := statsRepo.Insert(ctx, row); err != nil {
			appLogger.Warn("failed to persist stats row for year %d: %v", year, err)
		}
		if publisher != nil {
			publisher.Publish(telemetry.StepMessage{Year: year, Stats: stats, Timestamp: time.Now()})
		}
	}

	appLogger.Info("bootstrapping WebSocket hub...")
	hub := network.NewHub(sim, tun, appLogger)
	hub.SetStepCallback(onStep)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Automated state backup routine.
	autosave := func() {
		payload, err := json.Marshal(sim.State())
		if err != nil {
			appLogger.Warn("failed to marshal autosave state: %v", err)
			return
		}
		if err := snapRepo.Upsert(context.Background(), "autosave", payload); err != nil {
			appLogger.Warn("failed to persist autosave snapshot: %v", err)
		}
	}
	go func() {
		backupTicker := time.NewTicker(time.Duration(cfg.Simulation.AutosaveSeconds) * time.Second)
		defer backupTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-backupTicker.C:
				autosave()
			}
		}
	}()

	apiServer := network.NewServer(ctx, sim, catalog, eventRepo, statsRepo, tun, cfg.Server.AdminToken, onStep, appLogger)
	router := apiServer.Router()

	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: cors(router),
	}

	go func() {
		appLogger.Info("HTTP API & WS server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down...")
	sim.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP shutdown: %v", err)
	}

	autosave()
	appLogger.Info("state saved, goodbye")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests from the grid editor dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
