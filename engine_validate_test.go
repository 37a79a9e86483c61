package rotor

import (
	"context"
	"errors"
	"testing"
)

func TestValidateAccess(t *testing.T) {
	ids := newMockIdentity()
	p := ids.seed(t, "alice@example.com", "alice", "correct-horse-battery")

	engine, _, done := newTestEngine(t, liveTokenConfig(), ids)
	defer done()

	ctx := context.Background()
	res, err := engine.Issue(ctx, p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := engine.ValidateAccess(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if claims.UID != p.ID {
		t.Fatalf("expected uid %q, got %q", p.ID, claims.UID)
	}

	if _, err := engine.ValidateAccess(ctx, "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateAccessRejectsExpiredToken(t *testing.T) {
	ids := newMockIdentity()
	p := ids.seed(t, "alice@example.com", "alice", "correct-horse-battery")

	engine, _, done := newTestEngine(t, testConfig(), ids)
	defer done()

	ctx := context.Background()
	res, err := engine.Issue(ctx, p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := engine.ValidateAccess(ctx, res.AccessToken); !errors.Is(err, ErrAccessTokenExpired) {
		t.Fatalf("expected ErrAccessTokenExpired, got %v", err)
	}
}

func TestValidateAccessRejectsTamperedToken(t *testing.T) {
	ids := newMockIdentity()
	p := ids.seed(t, "alice@example.com", "alice", "correct-horse-battery")

	engine, _, done := newTestEngine(t, liveTokenConfig(), ids)
	defer done()

	ctx := context.Background()
	res, err := engine.Issue(ctx, p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := res.AccessToken[:len(res.AccessToken)-2] + "xx"
	if _, err := engine.ValidateAccess(ctx, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSecurityReportReflectsConfig(t *testing.T) {
	cfg := liveTokenConfig()
	cfg.Security.EnableRotationThrottle = true
	cfg.Security.EnableIPThrottle = true
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 8

	engine, _, done := newTestEngine(t, cfg, newMockIdentity())
	defer done()

	report := engine.SecurityReport()
	if report.SigningAlgorithm != "HS256" {
		t.Fatalf("expected HS256, got %q", report.SigningAlgorithm)
	}
	if report.AccessTTL != cfg.JWT.AccessTTL || report.RefreshTTL != cfg.Refresh.TTL {
		t.Fatalf("unexpected TTLs in report: %+v", report)
	}
	if !report.EnforceAccessExpiry {
		t.Fatal("expected expiry gate in report")
	}
	if !report.RotationThrottleActive || !report.LoginThrottleActive {
		t.Fatalf("expected active throttles in report: %+v", report)
	}
	if !report.AuditEnabled || !report.MetricsEnabled {
		t.Fatalf("expected audit and metrics in report: %+v", report)
	}
	if report.OpaqueTokenLength != cfg.Refresh.OpaqueLength {
		t.Fatalf("expected opaque length %d, got %d", cfg.Refresh.OpaqueLength, report.OpaqueTokenLength)
	}
}
