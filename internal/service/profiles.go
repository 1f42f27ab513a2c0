package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/repository"
	"github.com/and161185/numfetch/internal/upstream"
	"github.com/gofrs/uuid/v5"
)

// ProfileConfig is the usable call template derived from the active profile.
type ProfileConfig struct {
	AuthToken      string            `json:"auth_token"`
	SessionToken   string            `json:"session_token"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	SessionExpires *time.Time        `json:"session_expires,omitempty"`
	Headers        map[string]string `json:"headers"`
}

// ProfileService defines the credential profile registry.
type ProfileService interface {
	// Create inserts a new profile as the active one and logs it in synchronously.
	Create(ctx context.Context, name, authToken string) (*model.Profile, upstream.LoginReply, error)
	// List returns all profiles, newest first.
	List(ctx context.Context) ([]model.Profile, error)
	// Activate makes the target profile the single active one.
	Activate(ctx context.Context, id uuid.UUID) error
	// Login attempts an upstream login for the profile and records the outcome.
	Login(ctx context.Context, id uuid.UUID) (upstream.LoginReply, error)
	// ActiveProfile returns the active profile, ErrNotFound when none.
	ActiveProfile(ctx context.Context) (*model.Profile, error)
	// ActiveConfig returns a usable call template, or nil when no active
	// profile is logged in.
	ActiveConfig(ctx context.Context) (*ProfileConfig, error)
	// Delete removes a profile; reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ProfileServiceImpl struct {
	repo    repository.ProfileRepository
	gateway upstream.Gateway
	baseURL string
	now     func() time.Time
}

// NewProfileService constructs ProfileService.
func NewProfileService(repo repository.ProfileRepository, gw upstream.Gateway, baseURL string) *ProfileServiceImpl {
	return &ProfileServiceImpl{repo: repo, gateway: gw, baseURL: baseURL, now: time.Now}
}

// Create deactivates every profile, inserts the new one as active and
// immediately attempts an upstream login.
func (s *ProfileServiceImpl) Create(ctx context.Context, name, authToken string) (*model.Profile, upstream.LoginReply, error) {
	if name == "" || len(name) > 100 {
		return nil, upstream.LoginReply{}, fmt.Errorf("validation: name length must be 1..100")
	}
	if len(authToken) < 10 {
		return nil, upstream.LoginReply{}, fmt.Errorf("validation: auth_token too short")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, upstream.LoginReply{}, err
	}
	p := &model.Profile{
		ID:           id,
		Name:         name,
		AuthToken:    authToken,
		SessionToken: authToken, // session token defaults to the auth token
		LoginStatus:  model.LoginNotAttempted,
	}
	if err := s.repo.CreateActive(ctx, p); err != nil {
		return nil, upstream.LoginReply{}, err
	}

	reply, err := s.Login(ctx, p.ID)
	if err != nil {
		return nil, upstream.LoginReply{}, err
	}
	// Re-read so the returned profile carries the recorded login state.
	p, err = s.repo.Get(ctx, p.ID)
	if err != nil {
		return nil, upstream.LoginReply{}, err
	}
	return p, reply, nil
}

// List returns all profiles, newest first.
func (s *ProfileServiceImpl) List(ctx context.Context) ([]model.Profile, error) {
	return s.repo.List(ctx)
}

// Activate makes the target profile the single active one.
func (s *ProfileServiceImpl) Activate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.repo.Activate(ctx, id)
}

// Login attempts an upstream login and records the outcome on the profile.
// The upstream result is a value, success or not; an error here means the
// profile is missing or the store failed.
func (s *ProfileServiceImpl) Login(ctx context.Context, id uuid.UUID) (upstream.LoginReply, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return upstream.LoginReply{}, err
	}

	reply := s.gateway.Login(ctx, p.AuthToken)

	st := model.LoginState{
		LastLoginAttempt: s.now().UTC(),
		// keep prior identity fields unless the attempt succeeds
		SessionToken:   p.SessionToken,
		Username:       p.Username,
		Email:          p.Email,
		SessionExpires: p.SessionExpires,
		LoginStatus:    model.LoginFailed,
	}
	if reply.Success {
		st.IsLoggedIn = true
		st.LoginStatus = model.LoginSuccess
		st.Username = reply.Data.Username
		st.Email = reply.Data.Email
		st.SessionToken = reply.Data.AuthToken
		if st.SessionToken == "" {
			st.SessionToken = p.AuthToken
		}
		if t, ok := upstream.ParseSessionExpires(reply.Data.SessionExpires); ok {
			st.SessionExpires = &t
		}
	}
	if err := s.repo.SetLoginState(ctx, id, st); err != nil {
		return upstream.LoginReply{}, err
	}
	return reply, nil
}

// ActiveProfile returns the active profile, ErrNotFound when none.
func (s *ProfileServiceImpl) ActiveProfile(ctx context.Context) (*model.Profile, error) {
	return s.repo.GetActive(ctx)
}

// ActiveConfig returns a call template only when the active profile exists
// and is logged in; otherwise nil, so the gateway falls back to the
// anonymous default.
func (s *ProfileServiceImpl) ActiveConfig(ctx context.Context) (*ProfileConfig, error) {
	p, err := s.repo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !p.IsLoggedIn {
		return nil, nil
	}
	sessionToken := p.SessionToken
	if sessionToken == "" {
		sessionToken = p.AuthToken
	}
	return &ProfileConfig{
		AuthToken:      p.AuthToken,
		SessionToken:   sessionToken,
		Username:       p.Username,
		Email:          p.Email,
		SessionExpires: p.SessionExpires,
		Headers:        upstream.ProfileHeaders(s.baseURL, sessionToken),
	}, nil
}

// Delete removes a profile outright. Deleting the active profile leaves no
// active profile; selecting a successor is an explicit operator action.
func (s *ProfileServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	return s.repo.Delete(ctx, id)
}
