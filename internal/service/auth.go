// Package service contains application services for operator auth, the range
// catalog, the profile registry and the cycling timer.
package service

import (
	"context"
	"errors"
	"time"

	pkgcrypto "github.com/and161185/numfetch/internal/crypto"
	"github.com/and161185/numfetch/internal/errs"
	"github.com/and161185/numfetch/internal/model"
	"github.com/and161185/numfetch/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines operator authentication operations.
type AuthService interface {
	// Login authenticates an operator and issues an access token.
	Login(ctx context.Context, username, password string) (model.Tokens, error)
	// Authenticate resolves a bearer token to an active operator account.
	Authenticate(ctx context.Context, token string) (*model.AdminUser, error)
	// EnsureAdmin seeds the default operator account if it does not exist.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, now: time.Now}
}

// Login verifies credentials, stamps last_login and issues an HS256 JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, error) {
	if username == "" || password == "" {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	u, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, err
		}
		// hide existence of the user on wrong password
		return model.Tokens{}, errs.ErrUnauthorized
	}

	// Best-effort stamp; a failed write must not fail the login.
	_ = s.users.TouchLastLogin(ctx, username, s.now().UTC())

	return s.issueAccessToken(username)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(username string) (model.Tokens, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Authenticate parses and validates a token, then loads the active operator
// it names. Any failure maps to ErrUnauthorized.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*model.AdminUser, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrUnauthorized
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errs.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errs.ErrUnauthorized
	}
	u, err := s.users.GetActiveByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}

// EnsureAdmin creates the default operator account on first run.
func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("empty username/password")
	}
	if _, err := s.users.GetActiveByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return err
	}
	u := &model.AdminUser{
		ID:       uid,
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), saltAuth),
		SaltAuth: saltAuth,
		IsActive: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a seed race with another instance
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}
