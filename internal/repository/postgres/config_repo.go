package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ConfigRepo implements ConfigRepository using PostgreSQL.
type ConfigRepo struct{ db *DB }

// NewConfigRepo constructs a configuration repository.
func NewConfigRepo(db *DB) *ConfigRepo { return &ConfigRepo{db: db} }

// Get loads the entry for key. Absence maps to ErrNotFound.
func (r *ConfigRepo) Get(ctx context.Context, key string) (*model.ConfigEntry, error) {
	const q = `SELECT key, value, updated_by, updated_at FROM configurations WHERE key=$1`
	row := r.db.Pool.QueryRow(ctx, q, key)
	var e model.ConfigEntry
	if err := row.Scan(&e.Key, &e.Value, &e.UpdatedBy, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Set upserts the full value for key. The row-level upsert is the only locking;
// last write wins on concurrent updates to the same key.
func (r *ConfigRepo) Set(ctx context.Context, key string, value json.RawMessage, actor string) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	const q = `
INSERT INTO configurations (id, key, value, updated_by)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key)
DO UPDATE SET value=EXCLUDED.value, updated_by=EXCLUDED.updated_by, updated_at=now()`
	_, err = r.db.Pool.Exec(ctx, q, id, key, value, actor)
	return err
}
