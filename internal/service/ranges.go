package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const maxRangeValueLen = 20

// RangeService defines operations over the number-range catalog.
type RangeService interface {
	// List returns catalog entries, newest update first; category "" = all.
	List(ctx context.Context, category string) ([]model.RangeItem, error)
	// Create adds a range to a category.
	Create(ctx context.Context, rangeValue, category string, extra json.RawMessage) (*model.RangeItem, error)
	// Update overwrites only the supplied fields.
	Update(ctx context.Context, id uuid.UUID, upd model.RangeUpdate) (*model.RangeItem, error)
	// Delete removes a catalog entry.
	Delete(ctx context.Context, id uuid.UUID) error
	// Grouped maps each category to its ordered range values.
	Grouped(ctx context.Context) (map[string][]string, error)
}

type RangeServiceImpl struct {
	repo repository.RangeRepository
}

// NewRangeService constructs RangeService.
func NewRangeService(repo repository.RangeRepository) *RangeServiceImpl {
	return &RangeServiceImpl{repo: repo}
}

// List returns catalog entries ordered by updated_at descending.
func (s *RangeServiceImpl) List(ctx context.Context, category string) ([]model.RangeItem, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, errs.ErrInvalidCategory
	}
	return s.repo.List(ctx, category)
}

// Create validates input and inserts a new catalog entry.
func (s *RangeServiceImpl) Create(ctx context.Context, rangeValue, category string, extra json.RawMessage) (*model.RangeItem, error) {
	if err := validateRangeValue(rangeValue); err != nil {
		return nil, err
	}
	if !model.ValidCategory(category) {
		return nil, errs.ErrInvalidCategory
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	it := &model.RangeItem{
		ID:         id,
		RangeValue: rangeValue,
		Category:   category,
		ExtraData:  extra,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Update applies a partial update; nil fields stay untouched.
func (s *RangeServiceImpl) Update(ctx context.Context, id uuid.UUID, upd model.RangeUpdate) (*model.RangeItem, error) {
	if id == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	if upd.RangeValue != nil {
		if err := validateRangeValue(*upd.RangeValue); err != nil {
			return nil, err
		}
	}
	if upd.Category != nil && !model.ValidCategory(*upd.Category) {
		return nil, errs.ErrInvalidCategory
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes a catalog entry.
func (s *RangeServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Grouped maps every known category to its range values, most recently
// updated first. Categories with no entries still get an empty slice.
func (s *RangeServiceImpl) Grouped(ctx context.Context) (map[string][]string, error) {
	items, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]string, len(model.Categories))
	for _, c := range model.Categories {
		grouped[c] = []string{}
	}
	for _, it := range items {
		if _, ok := grouped[it.Category]; ok {
			grouped[it.Category] = append(grouped[it.Category], it.RangeValue)
		}
	}
	return grouped, nil
}

func validateRangeValue(v string) error {
	if v == "" || len(v) > maxRangeValueLen {
		return fmt.Errorf("validation: range_value length must be 1..%d", maxRangeValueLen)
	}
	return nil
}
