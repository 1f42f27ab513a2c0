package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/upstream"
)

// --- DTOs ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type rangeDTO struct {
	ID         uuid.UUID       `json:"id"`
	RangeValue string          `json:"range_value"`
	Category   string          `json:"category"`
	ExtraData  json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toRangeDTO(it *model.RangeItem) rangeDTO {
	return rangeDTO{
		ID:         it.ID,
		RangeValue: it.RangeValue,
		Category:   it.Category,
		ExtraData:  it.ExtraData,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

type createRangeRequest struct {
	RangeValue string          `json:"range_value"`
	Category   string          `json:"category"`
	ExtraData  json.RawMessage `json:"extra_data,omitempty"`
}

type updateRangeRequest struct {
	RangeValue *string         `json:"range_value"`
	Category   *string         `json:"category"`
	ExtraData  json.RawMessage `json:"extra_data"`
}

type profileDTO struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	AuthToken        string     `json:"auth_token"`
	SessionToken     string     `json:"session_token,omitempty"`
	Username         string     `json:"username,omitempty"`
	Email            string     `json:"email,omitempty"`
	SessionExpires   *time.Time `json:"session_expires,omitempty"`
	IsActive         bool       `json:"is_active"`
	IsLoggedIn       bool       `json:"is_logged_in"`
	LoginStatus      string     `json:"login_status"`
	LastLoginAttempt *time.Time `json:"last_login_attempt,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toProfileDTO(p *model.Profile) profileDTO {
	return profileDTO{
		ID:               p.ID,
		Name:             p.Name,
		AuthToken:        p.AuthToken,
		SessionToken:     p.SessionToken,
		Username:         p.Username,
		Email:            p.Email,
		SessionExpires:   p.SessionExpires,
		IsActive:         p.IsActive,
		IsLoggedIn:       p.IsLoggedIn,
		LoginStatus:      p.LoginStatus,
		LastLoginAttempt: p.LastLoginAttempt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type createProfileRequest struct {
	Name      string `json:"name"`
	AuthToken string `json:"auth_token"`
}

type timerRequest struct {
	Category        string `json:"category"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type dashboardResponse struct {
	Status       string                 `json:"status"`
	Paused       bool                   `json:"paused"`
	CurrentRange *model.CurrentRange    `json:"current_range,omitempty"`
	Balance      upstream.BalanceResult `json:"balance"`
	Ranges       map[string][]string    `json:"ranges"`
	TimerStatus  model.TimerStatus      `json:"timer_status"`
}

// --- Auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	tok, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   tok.ExpiresAt,
	})
}

// --- Dashboard ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	grouped, err := s.ranges.Grouped(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	timer, err := s.cycling.Status(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	balance := s.gateway.Balance(ctx, s.callConfig(ctx))

	resp := dashboardResponse{
		Status:      "running",
		Paused:      s.isPaused(ctx),
		Balance:     balance,
		Ranges:      grouped,
		TimerStatus: timer,
	}
	if e, err := s.cfg.Get(ctx, model.KeyCurrentRange); err == nil {
		var cur model.CurrentRange
		if json.Unmarshal(e.Value, &cur) == nil {
			resp.CurrentRange = &cur
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Ranges ---

func (s *Server) handleListRanges(w http.ResponseWriter, r *http.Request) {
	items, err := s.ranges.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]rangeDTO, 0, len(items))
	for i := range items {
		out = append(out, toRangeDTO(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRange(w http.ResponseWriter, r *http.Request) {
	var req createRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	it, err := s.ranges.Create(r.Context(), req.RangeValue, req.Category, req.ExtraData)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRangeDTO(it))
}

func (s *Server) handleUpdateRange(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req updateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	it, err := s.ranges.Update(r.Context(), id, model.RangeUpdate{
		RangeValue: req.RangeValue,
		Category:   req.Category,
		ExtraData:  req.ExtraData,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRangeDTO(it))
}

func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.ranges.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "range deleted"})
}

// --- Upstream reports ---

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.Balance(r.Context(), s.callConfig(r.Context())))
}

func (s *Server) handleTestNumbers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.AccessList(r.Context(), s.callConfig(r.Context())))
}

// callConfig builds the header template for profile-backed upstream calls:
// the logged-in active profile when available, the anonymous default otherwise.
func (s *Server) callConfig(ctx context.Context) upstream.CallConfig {
	pc, err := s.profiles.ActiveConfig(ctx)
	if err != nil {
		s.log.Warn("active profile lookup failed", zap.Error(err))
	}
	if pc != nil {
		return upstream.CallConfig{Headers: pc.Headers}
	}
	if e, err := s.cfg.Get(ctx, model.KeyCurrentConfig); err == nil {
		var rc upstream.RequestConfig
		if err := json.Unmarshal(e.Value, &rc); err == nil && len(rc.Headers) > 0 {
			return upstream.CallConfig{Headers: rc.Headers, Cookies: rc.Cookies}
		}
	}
	return upstream.CallConfig{Headers: upstream.AnonymousHeaders(s.baseURL)}
}

// --- Timer ---

func (s *Server) handleTimerStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.cycling.Status(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	if req.IntervalMinutes == 0 {
		req.IntervalMinutes = 2
	}
	if err := s.cycling.Start(r.Context(), req.Category, req.IntervalMinutes); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "timer started for " + req.Category,
	})
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	if err := s.cycling.Stop(r.Context(), req.Category); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "timer stopped for " + req.Category,
	})
}

func (s *Server) handleTimerCycle(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	selected, ok, err := s.cycling.Cycle(r.Context(), req.Category)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := map[string]any{"success": true, "category": req.Category}
	if ok {
		resp["current_range"] = selected
	} else {
		resp["current_range"] = nil
		resp["message"] = "no ranges in category"
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Pause ---

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req model.PauseFlag
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	actor := ""
	if u, ok := AdminFromCtx(r.Context()); ok {
		actor = u.Username
	}
	raw, err := json.Marshal(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.cfg.Set(r.Context(), model.KeyPaused, raw, actor); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "paused": req.Paused})
}

// --- Profiles ---

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]profileDTO, 0, len(profiles))
	for i := range profiles {
		out = append(out, toProfileDTO(&profiles[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request body"})
		return
	}
	p, login, err := s.profiles.Create(r.Context(), req.Name, req.AuthToken)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"profile":      toProfileDTO(p),
		"login_result": login,
	})
}

func (s *Server) handleActivateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.profiles.Activate(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleLoginProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	reply, err := s.profiles.Login(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	removed, err := s.profiles.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !removed {
		writeErr(w, errs.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile deleted"})
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad id"})
		return uuid.Nil, false
	}
	return id, true
}
