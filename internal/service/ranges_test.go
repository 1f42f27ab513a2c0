package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/repository"
	"github.com/gofrs/uuid/v5"
)

type fakeRangeRepo struct {
	items []model.RangeItem

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

var _ repository.RangeRepository = (*fakeRangeRepo)(nil)

func (f *fakeRangeRepo) List(_ context.Context, category string) ([]model.RangeItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if category == "" {
		out := make([]model.RangeItem, len(f.items))
		copy(out, f.items)
		return out, nil
	}
	var out []model.RangeItem
	for _, it := range f.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeRangeRepo) Create(_ context.Context, it *model.RangeItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, ex := range f.items {
		if ex.RangeValue == it.RangeValue && ex.Category == it.Category {
			return errs.ErrDuplicateRange
		}
	}
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeRangeRepo) Get(_ context.Context, id uuid.UUID) (*model.RangeItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeRangeRepo) Update(_ context.Context, id uuid.UUID, upd model.RangeUpdate) (*model.RangeItem, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if upd.RangeValue != nil {
			f.items[i].RangeValue = *upd.RangeValue
		}
		if upd.Category != nil {
			f.items[i].Category = *upd.Category
		}
		if upd.ExtraData != nil {
			f.items[i].ExtraData = upd.ExtraData
		}
		c := f.items[i]
		return &c, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeRangeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func TestRanges_Create_Validation(t *testing.T) {
	t.Parallel()
	s := NewRangeService(&fakeRangeRepo{})
	ctx := context.Background()

	if _, err := s.Create(ctx, "", model.CategoryFavorites, nil); err == nil {
		t.Fatalf("want validation error on empty range value")
	}
	if _, err := s.Create(ctx, "123456789012345678901", model.CategoryFavorites, nil); err == nil {
		t.Fatalf("want validation error on over-long range value")
	}
	if _, err := s.Create(ctx, "24996218XXXX", "bogus", nil); !errors.Is(err, errs.ErrInvalidCategory) {
		t.Fatalf("want ErrInvalidCategory, got %v", err)
	}
}

func TestRanges_Create_DuplicatePerCategory(t *testing.T) {
	t.Parallel()
	repo := &fakeRangeRepo{}
	s := NewRangeService(repo)
	ctx := context.Background()

	if _, err := s.Create(ctx, "24996218XXXX", model.CategoryFavorites, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(ctx, "24996218XXXX", model.CategoryFavorites, nil); !errors.Is(err, errs.ErrDuplicateRange) {
		t.Fatalf("want ErrDuplicateRange in same category, got %v", err)
	}
	// same value is fine in a different category
	if _, err := s.Create(ctx, "24996218XXXX", model.CategoryRecents, nil); err != nil {
		t.Fatalf("same value other category: %v", err)
	}
}

func TestRanges_Update_PartialAndValidation(t *testing.T) {
	t.Parallel()
	repo := &fakeRangeRepo{}
	s := NewRangeService(repo)
	ctx := context.Background()

	it, err := s.Create(ctx, "34votes", model.CategorySpecial, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "bogus"
	if _, err := s.Update(ctx, it.ID, model.RangeUpdate{Category: &bad}); !errors.Is(err, errs.ErrInvalidCategory) {
		t.Fatalf("want ErrInvalidCategory, got %v", err)
	}

	nv := "44votes"
	got, err := s.Update(ctx, it.ID, model.RangeUpdate{RangeValue: &nv})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.RangeValue != "44votes" || got.Category != model.CategorySpecial {
		t.Fatalf("partial update touched wrong fields: %+v", got)
	}

	if _, err := s.Update(ctx, uuid.Nil, model.RangeUpdate{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for nil id, got %v", err)
	}
}

func TestRanges_Grouped_AllCategoriesPresent(t *testing.T) {
	t.Parallel()
	repo := &fakeRangeRepo{}
	s := NewRangeService(repo)
	ctx := context.Background()

	if _, err := s.Create(ctx, "111", model.CategoryFavorites, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "222", model.CategoryFavorites, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	grouped, err := s.Grouped(ctx)
	if err != nil {
		t.Fatalf("Grouped: %v", err)
	}
	if len(grouped) != len(model.Categories) {
		t.Fatalf("want all categories as keys, got %v", grouped)
	}
	if len(grouped[model.CategoryFavorites]) != 2 {
		t.Fatalf("favorites: %v", grouped[model.CategoryFavorites])
	}
	if grouped[model.CategoryRecents] == nil || grouped[model.CategorySpecial] == nil {
		t.Fatalf("empty categories must map to empty slices, got %v", grouped)
	}
}

func TestRanges_List_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	s := NewRangeService(&fakeRangeRepo{})

	if _, err := s.List(context.Background(), "bogus"); !errors.Is(err, errs.ErrInvalidCategory) {
		t.Fatalf("want ErrInvalidCategory, got %v", err)
	}
}
