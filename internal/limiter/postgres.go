package limiter

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed sliding-window request limiter. Keeping the
// counters in the shared store lets multiple instances enforce one budget
// and leaves eviction to the window-reset upsert instead of process memory.
type PG struct {
	pool   pgxQuerier
	window time.Duration
	maxReq int
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(pool *pgxpool.Pool, window time.Duration, maxReq int) *PG {
	return &PG{pool: pool, window: window, maxReq: maxReq}
}

// NewPGWithQuerier constructs a PostgreSQL-backed limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, window time.Duration, maxReq int) *PG {
	return &PG{pool: q, window: window, maxReq: maxReq}
}

// HashAddr returns a stable hash for a client address to avoid storing raw IPs.
func HashAddr(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

// Allow records one request for addr and reports whether the window cap holds.
// A window that has elapsed is reset by the same upsert that counts the request.
func (l *PG) Allow(ctx context.Context, addr string) (bool, time.Duration, error) {
	const q = `
INSERT INTO request_limiter (ip_hash, window_start, req_count, updated_at)
VALUES ($1, now(), 1, now())
ON CONFLICT (ip_hash) DO UPDATE
SET
  req_count = CASE WHEN now() - request_limiter.window_start > $2::interval THEN 1 ELSE request_limiter.req_count + 1 END,
  window_start = CASE WHEN now() - request_limiter.window_start > $2::interval THEN now() ELSE request_limiter.window_start END,
  updated_at = now()
RETURNING req_count, window_start`
	var (
		count       int
		windowStart time.Time
	)
	if err := l.pool.QueryRow(ctx, q, HashAddr(addr), l.window).Scan(&count, &windowStart); err != nil {
		return false, 0, err
	}
	if count > l.maxReq {
		retry := l.window - time.Since(windowStart)
		if retry < 0 {
			retry = 0
		}
		return false, retry, nil
	}
	return true, 0, nil
}
