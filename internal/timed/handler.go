package timed

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

type errorResponse struct {
	Error string `json:"error"`
}

type nowResponse struct {
	StableTime  string  `json:"stable_time"`
	UnixSeconds float64 `json:"unix_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Printf("write health response: %v", err)
	}
}

func (s *Server) handleGetStableTime(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.storage.Current(r.Context())
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no stable time stored"})
		return
	}
	writeJSON(w, http.StatusOK, snap.Mapping())
}

func (s *Server) handlePutStableTime(w http.ResponseWriter, r *http.Request) {
	var values map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be a JSON mapping of numeric fields"})
		return
	}
	snap, ok := timepoint.FromMapping(values)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "mapping is missing required fields or holds invalid values"})
		return
	}
	if err := s.storage.SetCurrent(r.Context(), &snap); err != nil {
		log.Printf("store stable time: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to store stable time"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.storage.Current(r.Context())
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no stable time stored"})
		return
	}
	uptime, err := s.uptime()
	if err != nil {
		log.Printf("read uptime: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read system uptime"})
		return
	}
	projected := snap.ProjectedAt(uptime)
	writeJSON(w, http.StatusOK, nowResponse{
		StableTime:  timepoint.Instant(projected).Format(time.RFC3339Nano),
		UnixSeconds: projected,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
