// Package model defines domain entities used by services and repositories.
package model

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Range categories. The catalog only accepts these three.
const (
	CategoryFavorites = "favorites"
	CategoryRecents   = "recents"
	CategorySpecial   = "special"
)

// Categories lists all valid range categories in dashboard order.
var Categories = []string{CategoryFavorites, CategoryRecents, CategorySpecial}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Profile login statuses.
const (
	LoginNotAttempted = "not_attempted"
	LoginSuccess      = "success"
	LoginFailed       = "failed"
)

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AdminUser represents an operator account. Passwords are stored as Argon2id hashes.
type AdminUser struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	IsActive  bool
	CreatedAt time.Time
	LastLogin *time.Time
}

// RangeItem is a single catalog entry: a number-range token filed under a category.
// (RangeValue, Category) is unique; the same value may appear in other categories.
type RangeItem struct {
	ID         uuid.UUID
	RangeValue string
	Category   string
	ExtraData  json.RawMessage // optional annotation, nil when absent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RangeUpdate carries a partial update; nil fields are left untouched.
type RangeUpdate struct {
	RangeValue *string
	Category   *string
	ExtraData  json.RawMessage
}

// Profile is a named credential bundle for the upstream API.
// At most one profile is active at any time.
type Profile struct {
	ID               uuid.UUID
	Name             string
	AuthToken        string // credential presented to the upstream login endpoint
	SessionToken     string // returned by upstream after login; falls back to AuthToken
	Username         string // upstream identity, populated post-login
	Email            string
	SessionExpires   *time.Time
	IsActive         bool
	IsLoggedIn       bool
	LoginStatus      string // not_attempted | success | failed
	LastLoginAttempt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LoginState is the profile mutation recorded after every upstream login attempt.
type LoginState struct {
	IsLoggedIn       bool
	LoginStatus      string
	SessionToken     string
	Username         string
	Email            string
	SessionExpires   *time.Time
	LastLoginAttempt time.Time
}

// ConfigEntry is a named JSON blob; every update replaces the whole value.
type ConfigEntry struct {
	Key       string
	Value     json.RawMessage
	UpdatedBy string
	UpdatedAt time.Time
}

// Well-known configuration keys.
const (
	KeyTimerStatus   = "timer_status"
	KeyCurrentRange  = "current_range"
	KeyCurrentConfig = "current_config"
	KeyPaused        = "paused"
)

// CycleIndexKey returns the configuration key holding a category's cycle position.
func CycleIndexKey(category string) string { return category + "_cycle_index" }

// TimerStatus is the cycling timer state persisted under KeyTimerStatus.
// It is advisory metadata: advancing the cycle is the caller's responsibility.
type TimerStatus struct {
	Active          bool       `json:"active"`
	Category        string     `json:"category,omitempty"`
	IntervalMinutes int        `json:"interval_minutes"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	NextCycle       *time.Time `json:"next_cycle,omitempty"`
	StoppedAt       *time.Time `json:"stopped_at,omitempty"`
}

// CurrentRange records the most recent cycle selection under KeyCurrentRange.
type CurrentRange struct {
	CurrentRange string    `json:"current_range"`
	Category     string    `json:"category"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CycleIndex is the persisted next position into a category's range list.
// The stored value grows without bound; wrap happens at read time.
type CycleIndex struct {
	Index     int       `json:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PauseFlag is stored under KeyPaused and gates the public fetch endpoints.
type PauseFlag struct {
	Paused bool `json:"paused"`
}
