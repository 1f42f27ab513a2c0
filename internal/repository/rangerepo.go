package repository

import (
	"context"

	"github.com/and161185/numfetch/internal/model"
	"github.com/gofrs/uuid/v5"
)

// RangeRepository provides CRUD access to the number-range catalog.
// All listings are ordered most-recently-updated first.
type RangeRepository interface {
	// List returns catalog entries, optionally filtered by category ("" = all).
	List(ctx context.Context, category string) ([]model.RangeItem, error)
	// Create inserts a new entry; (range_value, category) must be unique.
	Create(ctx context.Context, it *model.RangeItem) error
	// Get loads a single entry by id.
	Get(ctx context.Context, id uuid.UUID) (*model.RangeItem, error)
	// Update overwrites only the supplied fields.
	Update(ctx context.Context, id uuid.UUID, upd model.RangeUpdate) (*model.RangeItem, error)
	// Delete removes an entry; ErrNotFound if nothing was removed.
	Delete(ctx context.Context, id uuid.UUID) error
}
