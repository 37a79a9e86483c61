package rotor

import "time"

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport].
type SecurityReport struct {
	SigningAlgorithm       string
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	EnforceAccessExpiry    bool
	RotationThrottleActive bool
	LoginThrottleActive    bool
	AuditEnabled           bool
	MetricsEnabled         bool
	OpaqueTokenLength      int
}

// SecurityReport summarizes the active configuration without exposing key
// material.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm:       e.signer.Algorithm(),
		AccessTTL:              e.config.JWT.AccessTTL,
		RefreshTTL:             e.config.Refresh.TTL,
		EnforceAccessExpiry:    e.config.Security.EnforceAccessExpiry,
		RotationThrottleActive: e.limiter != nil && e.config.Security.EnableRotationThrottle,
		LoginThrottleActive:    e.limiter != nil && e.config.Security.EnableIPThrottle,
		AuditEnabled:           e.audit != nil,
		MetricsEnabled:         e.metrics.Enabled(),
		OpaqueTokenLength:      e.config.Refresh.OpaqueLength,
	}
}
