package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new admin user row.
func (r *UserRepo) Create(ctx context.Context, u *model.AdminUser) error {
	const q = `
INSERT INTO admin_users (id, username, pwd_hash, salt_auth, is_active)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.IsActive)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetActiveByUsername selects an active user by username.
func (r *UserRepo) GetActiveByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, is_active, created_at, last_login
FROM admin_users WHERE username=$1 AND is_active`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var u model.AdminUser
	if err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.IsActive, &u.CreatedAt, &u.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin stamps last_login after a successful authentication.
func (r *UserRepo) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	const q = `UPDATE admin_users SET last_login=$2 WHERE username=$1`
	_, err := r.db.Pool.Exec(ctx, q, username, at)
	return err
}
