package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/upstream"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := s.ping(r.Context()); err != nil {
		dbStatus = "disconnected"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "running",
		Timestamp: time.Now().UTC(),
		Database:  dbStatus,
	})
}

func (s *Server) handleFetchNumber(w http.ResponseWriter, r *http.Request) {
	s.relayFetch(w, r, "")
}

func (s *Server) handleFetchNumberRange(w http.ResponseWriter, r *http.Request) {
	s.relayFetch(w, r, chi.URLParam(r, "range"))
}

// relayFetch forwards a number request upstream and returns the response
// verbatim. The pause flag short-circuits before any outbound call.
func (s *Server) relayFetch(w http.ResponseWriter, r *http.Request, rangeValue string) {
	ctx := r.Context()
	if s.isPaused(ctx) {
		writeJSON(w, http.StatusOK, errBody{Error: "Server is paused"})
		return
	}

	resp, err := s.gateway.FetchNumber(ctx, s.fetchConfig(ctx, rangeValue))
	if err != nil {
		s.log.Error("fetch number failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// fetchConfig resolves the outbound template: the current_config entry when
// present, the anonymous default otherwise.
func (s *Server) fetchConfig(ctx context.Context, rangeValue string) upstream.RequestConfig {
	e, err := s.cfg.Get(ctx, model.KeyCurrentConfig)
	if err != nil {
		return upstream.DefaultFetchConfig(s.baseURL, rangeValue)
	}
	var rc upstream.RequestConfig
	if err := json.Unmarshal(e.Value, &rc); err != nil {
		s.log.Warn("malformed current_config entry", zap.Error(err))
		return upstream.DefaultFetchConfig(s.baseURL, rangeValue)
	}
	if rangeValue != "" {
		rc = upstream.ApplyRange(rc, s.baseURL, rangeValue)
	}
	return rc
}

func (s *Server) isPaused(ctx context.Context) bool {
	e, err := s.cfg.Get(ctx, model.KeyPaused)
	if err != nil {
		return false
	}
	var p model.PauseFlag
	if err := json.Unmarshal(e.Value, &p); err != nil {
		return false
	}
	return p.Paused
}
