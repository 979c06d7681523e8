// Package network - api.go
// REST surface for the simulation engine, under /api/v1.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/rules"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/scenario"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/engine"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/infra/storage"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/tuning"
)

// Server bundles the dependencies of the REST handlers.
type Server struct {
	sim       *engine.Simulator
	catalog   *scenario.Catalog
	eventRepo storage.EventRepository
	statsRepo storage.StatsHistoryRepository
	tun       *tuning.Config
	logger    *logger.Logger

	adminToken string
	onStep     engine.UpdateFunc
	ctx        context.Context
}

// NewServer creates the REST server. ctx is the server lifetime; runs
// launched over the API inherit it.
func NewServer(ctx context.Context, sim *engine.Simulator, catalog *scenario.Catalog, eventRepo storage.EventRepository, statsRepo storage.StatsHistoryRepository, tun *tuning.Config, adminToken string, onStep engine.UpdateFunc, log *logger.Logger) *Server {
	return &Server{
		sim:        sim,
		catalog:    catalog,
		eventRepo:  eventRepo,
		statsRepo:  statsRepo,
		tun:        tun,
		logger:     log,
		adminToken: adminToken,
		onStep:     onStep,
		ctx:        ctx,
	}
}

// Router builds the /api/v1 route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/statistics", s.handleStatistics).Methods("GET")
	api.HandleFunc("/zones", s.handleGetZones).Methods("GET")
	api.HandleFunc("/zones", s.adminOnly(s.handlePutZones)).Methods("PUT")
	api.HandleFunc("/metrics/overview", s.handleOverview).Methods("GET")
	api.HandleFunc("/scenarios", s.handleScenarios).Methods("GET")
	api.HandleFunc("/scenarios/{id}/apply", s.handleApplyScenario).Methods("POST")
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")
	api.HandleFunc("/simulate/stop", s.handleStop).Methods("POST")
	api.HandleFunc("/simulate/speed", s.handleSpeed).Methods("POST")
	api.HandleFunc("/reset", s.adminOnly(s.handleReset)).Methods("POST")
	api.HandleFunc("/baseline/save", s.adminOnly(s.handleSaveBaseline)).Methods("POST")
	api.HandleFunc("/projection", s.handleProjection).Methods("GET")
	api.HandleFunc("/timeline", s.handleTimeline).Methods("GET")
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/tuning", s.adminOnly(s.handleTuning)).Methods("GET")

	api.HandleFunc("/history/events", s.handleHistoryEvents).Methods("GET")
	api.HandleFunc("/history/events/{id}", s.handleHistoryEventByID).Methods("GET")
	api.HandleFunc("/history/stats", s.handleHistoryStats).Methods("GET")

	r.HandleFunc("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler()).Methods("GET")

	return r
}

// adminOnly guards mutating routes with a bearer token when one is
// configured. An empty token leaves the routes open for development.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" && !s.checkBearerToken(r) {
			s.jsonError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.adminToken
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"year":  s.sim.CurrentYear(),
		"stats": s.sim.Statistics(),
	})
}

func (s *Server) handleGetZones(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.sim.Zones())
}

func (s *Server) handlePutZones(w http.ResponseWriter, r *http.Request) {
	var zones city.ZoneDistribution
	if err := json.NewDecoder(r.Body).Decode(&zones); err != nil {
		s.jsonError(w, "invalid zone distribution", http.StatusBadRequest)
		return
	}
	for kind, count := range zones {
		if count < 0 {
			s.jsonError(w, "negative count for zone "+string(kind), http.StatusBadRequest)
			return
		}
	}

	s.sim.SetZones(zones)
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, rules.BuildOverview(s.sim.Statistics(), s.sim.Zones()))
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	list := s.catalog.List()
	out := make([]engine.ScenarioInfo, 0, len(list))
	for _, sc := range list {
		out = append(out, engine.ScenarioInfo{ID: sc.ID, Name: sc.Name, Description: sc.Description})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleApplyScenario(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result := s.sim.ApplyScenario(id)
	if result == nil {
		s.jsonError(w, "unknown scenario: "+id, http.StatusNotFound)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"result": result,
		"diff":   rules.Compare(result.Before, result.After),
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetYear int `json:"targetYear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// A second request while a run is active is a silent no-op inside
	// the engine; the status endpoint is the way to observe that.
	go s.sim.SimulateTo(s.ctx, req.TargetYear, s.onStep)

	s.writeJSON(w, map[string]interface{}{"status": "ok", "targetYear": req.TargetYear})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.sim.Stop()
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed <= 0 {
		s.jsonError(w, "invalid speed", http.StatusBadRequest)
		return
	}

	s.sim.SetSpeed(req.Speed)
	s.writeJSON(w, map[string]interface{}{"status": "ok", "speed": s.sim.Speed()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sim.Reset()
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveBaseline(w http.ResponseWriter, r *http.Request) {
	s.sim.SaveBaseline()
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	yearStr := r.URL.Query().Get("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		s.jsonError(w, "missing or invalid year parameter", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, s.sim.Projection(year))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.sim.Timeline())
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, rules.Recommendations(s.sim.Statistics(), s.sim.Zones()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"year":       s.sim.CurrentYear(),
		"targetYear": s.sim.TargetYear(),
		"speed":      s.sim.Speed(),
		"running":    s.sim.IsRunning(),
		"scenarios":  len(s.sim.History()),
	})
}

func (s *Server) handleTuning(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"config":          s.tun,
		"recommendations": tuning.Analyze(metrics.Get().Snapshot()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
