package rotor

import (
	"context"
	"time"

	"github.com/rotorauth/rotor/internal"
	"github.com/rotorauth/rotor/internal/rate"
	"github.com/rotorauth/rotor/jwt"
	"github.com/rotorauth/rotor/refresh"
)

// Engine is the token lifecycle engine. Build one with [Builder.Build]; it is
// immutable afterwards and safe for concurrent use.
type Engine struct {
	config   Config
	store    refresh.Store
	signer   *jwt.Manager
	opaque   *internal.Generator
	limiter  *rate.Limiter
	audit    *auditDispatcher
	metrics  *Metrics
	identity IdentityStore
}

// Close flushes and stops the audit dispatcher. It does not close the Redis
// client or any injected store; the caller owns those.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// ValidateAccess verifies an access token's signature, algorithm, and expiry.
// It is the resource-server hot path: no store round-trip, one parse. Unlike
// rotation, an expired token fails here with [ErrAccessTokenExpired].
func (e *Engine) ValidateAccess(ctx context.Context, tokenStr string) (*jwt.AccessClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}()

	claims, err := e.signer.ParseAccess(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !claims.ExpiresAt.Time.After(time.Now()) {
		return nil, ErrAccessTokenExpired
	}

	return claims, nil
}
