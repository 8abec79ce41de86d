package throttle

import (
	"context"
	"time"
)

// Result of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter struct {
	store Store
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow records a hit for scope/ident and reports whether it is within rate.
func (l *Limiter) Allow(ctx context.Context, scope, ident string, rate Rate) (Result, error) {
	count, ttl, err := l.store.Incr(ctx, scope+":"+ident, rate.Period)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Allowed:   count <= rate.Limit,
		Limit:     rate.Limit,
		Remaining: rate.Limit - count,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
