// Package network - history.go
// Replay endpoints over the persisted event ledger and stats history.
package network

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/infra/storage"
)

// historyResponse is the API response for event history queries.
type historyResponse struct {
	TotalEvents int                `json:"total_events"`
	FilteredBy  string             `json:"filtered_by,omitempty"`
	GeneratedAt string             `json:"generated_at"`
	Events      []storage.SimEvent `json:"events"`
}

// handleHistoryEvents replays the persisted event ledger.
// GET /api/v1/history/events?type=SCENARIO_APPLIED&from=2025&to=2050
func (s *Server) handleHistoryEvents(w http.ResponseWriter, r *http.Request) {
	var (
		events   []storage.SimEvent
		filtered string
		err      error
	)

	q := r.URL.Query()
	switch {
	case q.Get("type") != "":
		filtered = "type=" + q.Get("type")
		events, err = s.eventRepo.GetByType(r.Context(), q.Get("type"))
	case q.Get("from") != "" || q.Get("to") != "":
		from, ferr := strconv.Atoi(q.Get("from"))
		to, terr := strconv.Atoi(q.Get("to"))
		if ferr != nil || terr != nil {
			s.jsonError(w, "from and to must both be years", http.StatusBadRequest)
			return
		}
		filtered = "years " + q.Get("from") + ".." + q.Get("to")
		events, err = s.eventRepo.GetByYearRange(r.Context(), from, to)
	default:
		events, err = s.eventRepo.GetAll(r.Context())
	}

	if err != nil {
		s.logger.Error("history query failed: %v", err)
		s.jsonError(w, "history query failed", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []storage.SimEvent{}
	}
	s.writeJSON(w, historyResponse{
		TotalEvents: len(events),
		FilteredBy:  filtered,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      events,
	})
}

// handleHistoryEventByID returns one persisted event in full detail.
func (s *Server) handleHistoryEventByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, err := s.eventRepo.GetByID(r.Context(), id)
	if err != nil {
		s.logger.Error("event lookup failed: %v", err)
		s.jsonError(w, "event lookup failed", http.StatusInternalServerError)
		return
	}
	if event == nil {
		s.jsonError(w, "no such event: "+id, http.StatusNotFound)
		return
	}

	s.writeJSON(w, event)
}

// handleHistoryStats returns persisted per-step statistics rows.
// GET /api/v1/history/stats?limit=50 or ?year=2040
func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			s.jsonError(w, "invalid year parameter", http.StatusBadRequest)
			return
		}
		rows, err := s.statsRepo.ByYear(r.Context(), year)
		if err != nil {
			s.logger.Error("stats history query failed: %v", err)
			s.jsonError(w, "stats history query failed", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, rows)
		return
	}

	limit := 100
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			s.jsonError(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	rows, err := s.statsRepo.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("stats history query failed: %v", err)
		s.jsonError(w, "stats history query failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, rows)
}
