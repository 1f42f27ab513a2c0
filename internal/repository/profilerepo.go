package repository

import (
	"context"

	"github.com/and161185/numfetch/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository provides access to upstream credential profiles.
// The "at most one active" invariant is enforced inside single transactions.
type ProfileRepository interface {
	// CreateActive deactivates every profile and inserts p as the active one,
	// in one transaction.
	CreateActive(ctx context.Context, p *model.Profile) error
	// List returns all profiles, newest first.
	List(ctx context.Context) ([]model.Profile, error)
	// Get loads a profile by id.
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// GetActive loads the currently active profile.
	GetActive(ctx context.Context) (*model.Profile, error)
	// Activate flips is_active so only the target profile holds it,
	// as a single conditional update. ErrNotFound if id is absent.
	Activate(ctx context.Context, id uuid.UUID) error
	// SetLoginState records the outcome of an upstream login attempt.
	SetLoginState(ctx context.Context, id uuid.UUID, st model.LoginState) error
	// Delete removes a profile; reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
