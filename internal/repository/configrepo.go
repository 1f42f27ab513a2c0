package repository

import (
	"context"
	"encoding/json"

	"github.com/and161185/numfetch/internal/model"
)

// ConfigRepository is the key/value configuration store backing durable state
// for the cycling service and the public gateway.
type ConfigRepository interface {
	// Get loads the entry for key; ErrNotFound when absent (a normal state
	// for first-run defaults, not a failure).
	Get(ctx context.Context, key string) (*model.ConfigEntry, error)
	// Set upserts the full value for key; partial values are never merged.
	Set(ctx context.Context, key string, value json.RawMessage, actor string) error
}
