// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/numfetch/internal/model"
)

// UserRepository provides access to operator accounts.
type UserRepository interface {
	// Create inserts a new admin user.
	Create(ctx context.Context, u *model.AdminUser) error
	// GetActiveByUsername loads an active user by username.
	GetActiveByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	// TouchLastLogin stamps the last successful login time.
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
}
