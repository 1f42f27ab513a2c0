package postgres

import (
	"context"
	"errors"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// RangeRepo implements RangeRepository using PostgreSQL.
type RangeRepo struct{ db *DB }

// NewRangeRepo constructs a range catalog repository.
func NewRangeRepo(db *DB) *RangeRepo { return &RangeRepo{db: db} }

// List returns catalog entries ordered by updated_at descending,
// optionally filtered by category.
func (r *RangeRepo) List(ctx context.Context, category string) ([]model.RangeItem, error) {
	const qAll = `
SELECT id, range_value, category, extra_data, created_at, updated_at
FROM number_ranges
ORDER BY updated_at DESC`
	const qCat = `
SELECT id, range_value, category, extra_data, created_at, updated_at
FROM number_ranges
WHERE category=$1
ORDER BY updated_at DESC`

	var (
		rows pgx.Rows
		err  error
	)
	if category == "" {
		rows, err = r.db.Pool.Query(ctx, qAll)
	} else {
		rows, err = r.db.Pool.Query(ctx, qCat, category)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RangeItem
	for rows.Next() {
		var it model.RangeItem
		if err = rows.Scan(&it.ID, &it.RangeValue, &it.Category, &it.ExtraData, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Create inserts a new catalog entry.
func (r *RangeRepo) Create(ctx context.Context, it *model.RangeItem) error {
	const q = `
INSERT INTO number_ranges (id, range_value, category, extra_data)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, it.ID, it.RangeValue, it.Category, it.ExtraData).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateRange
	}
	return err
}

// Get loads a single entry by id.
func (r *RangeRepo) Get(ctx context.Context, id uuid.UUID) (*model.RangeItem, error) {
	const q = `
SELECT id, range_value, category, extra_data, created_at, updated_at
FROM number_ranges WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var it model.RangeItem
	if err := row.Scan(&it.ID, &it.RangeValue, &it.Category, &it.ExtraData, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Update overwrites only the supplied fields inside one transaction.
func (r *RangeRepo) Update(ctx context.Context, id uuid.UUID, upd model.RangeUpdate) (it *model.RangeItem, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `
SELECT id, range_value, category, extra_data, created_at, updated_at
FROM number_ranges WHERE id=$1 FOR UPDATE`
	it = &model.RangeItem{}
	if err = tx.QueryRow(ctx, sel, id).
		Scan(&it.ID, &it.RangeValue, &it.Category, &it.ExtraData, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	if upd.RangeValue != nil {
		it.RangeValue = *upd.RangeValue
	}
	if upd.Category != nil {
		it.Category = *upd.Category
	}
	if upd.ExtraData != nil {
		it.ExtraData = upd.ExtraData
	}

	const updQ = `
UPDATE number_ranges
SET range_value=$2, category=$3, extra_data=$4, updated_at=now()
WHERE id=$1
RETURNING updated_at`
	if err = tx.QueryRow(ctx, updQ, it.ID, it.RangeValue, it.Category, it.ExtraData).
		Scan(&it.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrDuplicateRange
		}
		return nil, err
	}
	return it, nil
}

// Delete removes an entry.
func (r *RangeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM number_ranges WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
