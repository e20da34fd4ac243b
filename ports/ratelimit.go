package ports

import (
	"context"
	"time"

	"github.com/layer-3/walletlink/core"
)

// RateLimitResult reports the outcome of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter bounds challenge starts per identity inside a fixed window.
// The underlying counter is a single atomic increment-and-compare: a rejected
// attempt still counts, so the limit reads "at most N successful starts".
type RateLimiter interface {
	Allow(ctx context.Context, identity core.Identity) (RateLimitResult, error)
}
