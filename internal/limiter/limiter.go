// Package limiter defines interfaces and implementations for per-address
// request rate limiting.
package limiter

import (
	"context"
	"time"
)

// Limiter counts requests per client address over a sliding window.
type Limiter interface {
	// Allow records one request for the address and reports whether it is
	// within the window cap, with an optional retry-after.
	Allow(ctx context.Context, addr string) (bool, time.Duration, error)
}
