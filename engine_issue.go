package rotor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotorauth/rotor/refresh"
)

// createAttempts bounds opaque-token regeneration on key collision. With
// ~208 bits of entropy per token a second attempt is already unreachable in
// practice; the loop exists so the store's uniqueness guarantee, not luck,
// is what the invariant rests on.
const createAttempts = 3

// Issue produces a fresh (access token, refresh token) pair for an
// already-authenticated principal and persists the refresh record. When
// persistence fails no pair is released: the signed access token is
// discarded and [ErrIssuanceFailed] is returned.
func (e *Engine) Issue(ctx context.Context, p *Principal) (*AuthResult, error) {
	if e == nil {
		return failureResult(ErrEngineNotReady.Error()), ErrEngineNotReady
	}
	if p == nil || p.ID == "" {
		return failureResult("principal required"), ErrValidation
	}

	res, err := e.issuePair(ctx, p)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssue, false, p.ID, "", err, nil)
		return failureResult(ErrIssuanceFailed.Error()), err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssue, true, p.ID, "", nil, nil)

	return res, nil
}

// Login authenticates by email and password through the identity store and
// issues a pair on success. Unknown email and wrong password are both
// reported as [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if e == nil {
		return failureResult(ErrEngineNotReady.Error()), ErrEngineNotReady
	}

	if reasons := validateLoginRequest(email, password); len(reasons) > 0 {
		return failureResult(reasons...), ErrValidation
	}

	ip := clientIPFromContext(ctx)
	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, email, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginLimited, false, "", "", ErrLoginRateLimited, nil)
			return failureResult(ErrLoginRateLimited.Error()), ErrLoginRateLimited
		}
	}

	p, err := e.identity.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrPrincipalNotFound) {
			e.metricInc(MetricLoginFailure)
			return failureResult(ErrInvalidCredentials.Error()), fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return e.loginRejected(ctx, email, ip)
	}

	ok, err := e.identity.VerifyPassword(ctx, p, password)
	if err != nil || !ok {
		return e.loginRejected(ctx, email, ip)
	}

	if e.limiter != nil {
		if err := e.limiter.ResetLogin(ctx, email, ip); err != nil {
			// Stale counters only shorten the caller's budget; not fatal.
			e.emitAudit(ctx, auditEventLoginSuccess, true, p.ID, "", err, func() map[string]string {
				return map[string]string{"warning": "login counter reset failed"}
			})
		}
	}

	res, err := e.issuePair(ctx, p)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		return failureResult(ErrIssuanceFailed.Error()), err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, p.ID, "", nil, nil)

	return res, nil
}

func (e *Engine) loginRejected(ctx context.Context, email, ip string) (*AuthResult, error) {
	if e.limiter != nil {
		_ = e.limiter.IncrementLogin(ctx, email, ip)
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, nil)
	return failureResult(ErrInvalidCredentials.Error()), ErrInvalidCredentials
}

// Register creates a principal through the identity store and issues the
// first pair. Field validation failures surface per-field on
// [AuthResult.Errors].
func (e *Engine) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	if e == nil {
		return failureResult(ErrEngineNotReady.Error()), ErrEngineNotReady
	}

	if reasons := validateRegisterRequest(email, username, password); len(reasons) > 0 {
		e.metricInc(MetricRegisterFailure)
		return failureResult(reasons...), ErrValidation
	}

	p, err := e.identity.CreatePrincipal(ctx, CreatePrincipalInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, false, "", "", err, nil)
		if errors.Is(err, ErrPrincipalExists) {
			return failureResult(ErrPrincipalExists.Error()), ErrPrincipalExists
		}
		return failureResult("registration failed"), err
	}

	res, err := e.issuePair(ctx, p)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssue, false, p.ID, "", err, nil)
		return failureResult(ErrIssuanceFailed.Error()), err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, p.ID, "", nil, nil)

	return res, nil
}

// issuePair signs the access token, generates the opaque refresh string, and
// persists the record binding the two. Ordering matters: the access token is
// only handed out after its refresh record exists.
func (e *Engine) issuePair(ctx context.Context, p *Principal) (*AuthResult, error) {
	access, jti, err := e.signer.SignAccess(p.ID, p.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	now := time.Now()
	var opaque string
	for attempt := 0; attempt < createAttempts; attempt++ {
		opaque, err = e.opaque.OpaqueToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
		}

		err = e.store.Create(ctx, &refresh.Record{
			Token:     opaque,
			JWTID:     jti,
			UserID:    p.ID,
			IssuedAt:  now,
			ExpiresAt: now.Add(e.config.Refresh.TTL),
		})
		if err == nil {
			break
		}
		if !errors.Is(err, refresh.ErrDuplicateToken) {
			return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: opaque,
		Success:      true,
	}, nil
}
