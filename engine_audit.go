package rotor

import (
	"context"
	"time"
)

const (
	auditEventIssue          = "token.issue"
	auditEventLoginSuccess   = "login.success"
	auditEventLoginFailure   = "login.failure"
	auditEventLoginLimited   = "login.rate_limited"
	auditEventRegister       = "account.register"
	auditEventRotateSuccess  = "rotate.success"
	auditEventRotateInvalid  = "rotate.invalid"
	auditEventRotateLimited  = "rotate.rate_limited"
	auditEventReuseDetected  = "rotate.reuse_detected"
	auditEventRevokeRejected = "rotate.revoked_rejected"
	auditEventRevocation     = "token.revoke"
)

// emitAudit builds the event only when a dispatcher is active; metaFn runs
// lazily for the same reason.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID, tokenID string,
	err error,
	metaFn func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metaFn != nil {
		event.Metadata = metaFn()
	}

	e.audit.Emit(ctx, event)
}
