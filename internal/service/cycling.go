package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/repository"
)

// cyclingActor tags configuration writes made by the cycling service.
const cyclingActor = "cycling"

// CyclingService advances a persisted round-robin position through a
// category's range list. Timer state is pure metadata; invoking Cycle at the
// advertised interval is the caller's responsibility.
type CyclingService interface {
	// Status returns the persisted timer state, inactive default when absent.
	Status(ctx context.Context) (model.TimerStatus, error)
	// Start stops any prior timer and records a fresh active timer state.
	Start(ctx context.Context, category string, intervalMinutes int) error
	// Stop records the timer as stopped.
	Stop(ctx context.Context, category string) error
	// Cycle selects the next range of the category and persists the advanced
	// index. The bool is false when the category has no ranges.
	Cycle(ctx context.Context, category string) (string, bool, error)
}

type CyclingServiceImpl struct {
	cfg    repository.ConfigRepository
	ranges repository.RangeRepository
	now    func() time.Time
}

// NewCyclingService constructs CyclingService.
func NewCyclingService(cfg repository.ConfigRepository, ranges repository.RangeRepository) *CyclingServiceImpl {
	return &CyclingServiceImpl{cfg: cfg, ranges: ranges, now: time.Now}
}

// Status loads the persisted timer state. A missing entry is the idle state,
// not an error.
func (s *CyclingServiceImpl) Status(ctx context.Context) (model.TimerStatus, error) {
	e, err := s.cfg.Get(ctx, model.KeyTimerStatus)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TimerStatus{}, nil
		}
		return model.TimerStatus{}, err
	}
	var st model.TimerStatus
	if err := json.Unmarshal(e.Value, &st); err != nil {
		return model.TimerStatus{}, fmt.Errorf("timer_status: %w", err)
	}
	return st, nil
}

// Start implicitly stops any running timer before recording the new state.
func (s *CyclingServiceImpl) Start(ctx context.Context, category string, intervalMinutes int) error {
	if !model.ValidCategory(category) {
		return errs.ErrInvalidCategory
	}
	if intervalMinutes <= 0 {
		return fmt.Errorf("validation: interval_minutes must be positive")
	}
	if err := s.Stop(ctx, category); err != nil {
		return err
	}

	now := s.now().UTC()
	next := now.Add(time.Duration(intervalMinutes) * time.Minute)
	st := model.TimerStatus{
		Active:          true,
		Category:        category,
		IntervalMinutes: intervalMinutes,
		StartedAt:       &now,
		NextCycle:       &next,
	}
	return s.setJSON(ctx, model.KeyTimerStatus, st)
}

// Stop records the timer as stopped; stopping an idle timer is a no-op write.
func (s *CyclingServiceImpl) Stop(ctx context.Context, category string) error {
	if !model.ValidCategory(category) {
		return errs.ErrInvalidCategory
	}
	now := s.now().UTC()
	st := model.TimerStatus{Active: false, StoppedAt: &now}
	return s.setJSON(ctx, model.KeyTimerStatus, st)
}

// Cycle selects the range at the persisted index (wrapping at read when the
// catalog shrank), records the selection, and bumps the stored index. The
// stored integer grows without bound; only the read wraps, which keeps Cycle
// safe against concurrent catalog edits.
func (s *CyclingServiceImpl) Cycle(ctx context.Context, category string) (string, bool, error) {
	items, err := s.ranges.List(ctx, category)
	if err != nil {
		return "", false, err
	}
	if len(items) == 0 {
		return "", false, nil
	}

	idx := 0
	if e, err := s.cfg.Get(ctx, model.CycleIndexKey(category)); err == nil {
		var ci model.CycleIndex
		if jerr := json.Unmarshal(e.Value, &ci); jerr == nil && ci.Index > 0 {
			idx = ci.Index
		}
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", false, err
	}

	if idx >= len(items) {
		idx = 0
	}
	selected := items[idx].RangeValue
	now := s.now().UTC()

	cur := model.CurrentRange{CurrentRange: selected, Category: category, UpdatedAt: now}
	if err := s.setJSON(ctx, model.KeyCurrentRange, cur); err != nil {
		return "", false, err
	}
	next := model.CycleIndex{Index: idx + 1, UpdatedAt: now}
	if err := s.setJSON(ctx, model.CycleIndexKey(category), next); err != nil {
		return "", false, err
	}
	return selected, true, nil
}

func (s *CyclingServiceImpl) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cfg.Set(ctx, key, raw, cyclingActor)
}
