package rate

import "errors"

var (
	// ErrRateLimited is returned when an attempt budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis connectivity failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
