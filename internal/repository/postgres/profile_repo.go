package postgres

import (
	"context"
	"errors"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileCols = `
id, name, auth_token, session_token, username, email, session_expires,
is_active, is_logged_in, login_status, last_login_attempt, created_at, updated_at`

func scanProfile(row pgx.Row, p *model.Profile) error {
	return row.Scan(
		&p.ID, &p.Name, &p.AuthToken, &p.SessionToken, &p.Username, &p.Email, &p.SessionExpires,
		&p.IsActive, &p.IsLoggedIn, &p.LoginStatus, &p.LastLoginAttempt, &p.CreatedAt, &p.UpdatedAt,
	)
}

// CreateActive deactivates all profiles and inserts p as active in one transaction.
func (r *ProfileRepo) CreateActive(ctx context.Context, p *model.Profile) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
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

	const deact = `UPDATE profiles SET is_active=false, updated_at=now() WHERE is_active`
	if _, err = tx.Exec(ctx, deact); err != nil {
		return err
	}

	const ins = `
INSERT INTO profiles (id, name, auth_token, session_token, is_active, is_logged_in, login_status)
VALUES ($1, $2, $3, $4, true, false, $5)
RETURNING created_at, updated_at`
	if err = tx.QueryRow(ctx, ins, p.ID, p.Name, p.AuthToken, p.SessionToken, p.LoginStatus).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	p.IsActive = true
	return nil
}

// List returns all profiles, newest first.
func (r *ProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err = scanProfile(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get loads a profile by id.
func (r *ProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE id=$1`
	var p model.Profile
	if err := scanProfile(r.db.Pool.QueryRow(ctx, q, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetActive loads the currently active profile.
func (r *ProfileRepo) GetActive(ctx context.Context) (*model.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE is_active`
	var p model.Profile
	if err := scanProfile(r.db.Pool.QueryRow(ctx, q), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Activate flips is_active in a single conditional update, so exactly one
// profile ends up active.
func (r *ProfileRepo) Activate(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE profiles SET is_active = (id=$1), updated_at=now()
WHERE EXISTS (SELECT 1 FROM profiles WHERE id=$1)`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetLoginState records the outcome of an upstream login attempt.
func (r *ProfileRepo) SetLoginState(ctx context.Context, id uuid.UUID, st model.LoginState) error {
	const q = `
UPDATE profiles
SET is_logged_in=$2, login_status=$3, session_token=$4, username=$5, email=$6,
    session_expires=$7, last_login_attempt=$8, updated_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id,
		st.IsLoggedIn, st.LoginStatus, st.SessionToken, st.Username, st.Email,
		st.SessionExpires, st.LastLoginAttempt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a profile outright; no active-profile reassignment is done.
func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM profiles WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
