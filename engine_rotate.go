package rotor

import (
	"context"
	"errors"
	"time"

	"github.com/rotorauth/rotor/refresh"
)

// Rotate exchanges a presented (access token, refresh token) pair for a fresh
// one. The access token must be structurally valid but expired; the refresh
// record must be unused, unrevoked, inside its validity window, and bound to
// the access token's jti. The record is consumed atomically before reissue,
// so concurrent rotations of the same token resolve to exactly one winner.
//
// Validation failures on the access token collapse into [ErrInvalidToken]:
// an unauthenticated caller learns nothing about which check failed. State
// failures on the refresh record are specific ([ErrRefreshReuse],
// [ErrRefreshRevoked], [ErrRefreshExpired], [ErrTokenPairMismatch]): the
// caller held a valid session, so these are diagnostic rather than an
// enumeration surface.
func (e *Engine) Rotate(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	if e == nil {
		return failureResult(ErrEngineNotReady.Error()), ErrEngineNotReady
	}

	if reasons := validateRotateRequest(accessToken, refreshToken); len(reasons) > 0 {
		e.metricInc(MetricRotateFailure)
		return failureResult(reasons...), ErrValidation
	}

	claims, err := e.signer.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, "", "", ErrInvalidToken, func() map[string]string {
			return map[string]string{"reason": "parse_failed"}
		})
		return failureResult(ErrInvalidToken.Error()), ErrInvalidToken
	}

	now := time.Now()
	if e.config.Security.EnforceAccessExpiry && claims.ExpiresAt.Time.After(now) {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricNotYetExpired)
		e.emitAudit(ctx, auditEventRotateInvalid, false, claims.UID, claims.ID, ErrTokenNotYetExpired, nil)
		return failureResult(ErrTokenNotYetExpired.Error()), ErrTokenNotYetExpired
	}

	if e.limiter != nil {
		if err := e.limiter.CheckRotation(ctx, refreshToken); err != nil {
			e.metricInc(MetricRotateRateLimited)
			e.emitAudit(ctx, auditEventRotateLimited, false, claims.UID, claims.ID, ErrRotationRateLimited, nil)
			return failureResult(ErrRotationRateLimited.Error()), ErrRotationRateLimited
		}
	}

	rec, err := e.store.FindByToken(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, refresh.ErrNotFound):
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateInvalid, false, claims.UID, claims.ID, ErrUnknownRefreshToken, func() map[string]string {
				return map[string]string{"reason": "record_not_found"}
			})
			return failureResult(ErrUnknownRefreshToken.Error()), ErrUnknownRefreshToken
		default:
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateInvalid, false, claims.UID, claims.ID, err, func() map[string]string {
				return map[string]string{"reason": "store_lookup_failed"}
			})
			return failureResult(ErrStoreUnavailable.Error()), ErrStoreUnavailable
		}
	}

	if rec.Used {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricReuseDetected)
		e.emitAudit(ctx, auditEventReuseDetected, false, rec.UserID, rec.JWTID, ErrRefreshReuse, nil)
		return failureResult(ErrRefreshReuse.Error()), ErrRefreshReuse
	}
	if rec.Revoked {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricRevokedRejected)
		e.emitAudit(ctx, auditEventRevokeRejected, false, rec.UserID, rec.JWTID, ErrRefreshRevoked, nil)
		return failureResult(ErrRefreshRevoked.Error()), ErrRefreshRevoked
	}
	if rec.ExpiredAt(now) {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricExpiredRejected)
		e.emitAudit(ctx, auditEventRotateInvalid, false, rec.UserID, rec.JWTID, ErrRefreshExpired, func() map[string]string {
			return map[string]string{"reason": "record_expired"}
		})
		return failureResult(ErrRefreshExpired.Error()), ErrRefreshExpired
	}

	if rec.JWTID != claims.ID {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricPairMismatch)
		e.emitAudit(ctx, auditEventRotateInvalid, false, rec.UserID, claims.ID, ErrTokenPairMismatch, func() map[string]string {
			return map[string]string{"reason": "binding_mismatch"}
		})
		return failureResult(ErrTokenPairMismatch.Error()), ErrTokenPairMismatch
	}

	// The consume step. Everything above was advisory; this CAS is the only
	// decision concurrent callers cannot both win.
	if err := e.store.MarkUsed(ctx, refreshToken); err != nil {
		switch {
		case errors.Is(err, refresh.ErrAlreadyUsed):
			e.metricInc(MetricRotateFailure)
			e.metricInc(MetricReuseDetected)
			e.metricInc(MetricReplayDetected)
			e.emitAudit(ctx, auditEventReuseDetected, false, rec.UserID, rec.JWTID, ErrRefreshReuse, func() map[string]string {
				return map[string]string{"reason": "lost_consume_race"}
			})
			return failureResult(ErrRefreshReuse.Error()), ErrRefreshReuse
		case errors.Is(err, refresh.ErrNotFound):
			e.metricInc(MetricRotateFailure)
			return failureResult(ErrUnknownRefreshToken.Error()), ErrUnknownRefreshToken
		default:
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateInvalid, false, rec.UserID, rec.JWTID, err, func() map[string]string {
				return map[string]string{"reason": "consume_failed"}
			})
			return failureResult(ErrStoreUnavailable.Error()), ErrStoreUnavailable
		}
	}

	p, err := e.identity.FindByID(ctx, rec.UserID)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, rec.UserID, rec.JWTID, err, func() map[string]string {
			return map[string]string{"reason": "principal_lookup_failed"}
		})
		return failureResult(ErrRotationFailed.Error()), ErrRotationFailed
	}

	res, err := e.issuePair(ctx, p)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, rec.UserID, rec.JWTID, err, func() map[string]string {
			return map[string]string{"reason": "reissue_failed"}
		})
		return failureResult(ErrIssuanceFailed.Error()), err
	}

	e.metricInc(MetricRotateSuccess)
	e.emitAudit(ctx, auditEventRotateSuccess, true, rec.UserID, rec.JWTID, nil, nil)

	return res, nil
}

// Revoke flips the revoked flag on a refresh record. This is the
// administrative kill switch: any later rotation attempt with the token
// fails with [ErrRefreshRevoked] regardless of remaining validity.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	err := e.store.Revoke(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			return ErrUnknownRefreshToken
		}
		return ErrStoreUnavailable
	}

	e.metricInc(MetricRevocation)
	e.emitAudit(ctx, auditEventRevocation, true, "", "", nil, nil)

	return nil
}
