package marketauth

import (
	"context"
	"time"
)

// Audit action names are a wire contract consumed by downstream log
// pipelines; they never change spelling.
const (
	// AuditLoginSuccess is an exported constant or variable used by the authentication engine.
	AuditLoginSuccess = "LOGIN_SUCCESS"
	// AuditLoginFailed is an exported constant or variable used by the authentication engine.
	AuditLoginFailed = "LOGIN_FAILED"
	// AuditAccountCreated is an exported constant or variable used by the authentication engine.
	AuditAccountCreated = "ACCOUNT_CREATED"
	// AuditAccountLocked is an exported constant or variable used by the authentication engine.
	AuditAccountLocked = "ACCOUNT_LOCKED"
	// AuditAccountUnlocked is an exported constant or variable used by the authentication engine.
	AuditAccountUnlocked = "ACCOUNT_UNLOCKED"
	// AuditTokenRefreshed is an exported constant or variable used by the authentication engine.
	AuditTokenRefreshed = "TOKEN_REFRESHED"
	// AuditTokenRefreshFailed is an exported constant or variable used by the authentication engine.
	AuditTokenRefreshFailed = "TOKEN_REFRESH_FAILED"
	// AuditLogout is an exported constant or variable used by the authentication engine.
	AuditLogout = "LOGOUT"
	// AuditLogoutAll is an exported constant or variable used by the authentication engine.
	AuditLogoutAll = "LOGOUT_ALL"
	// AuditPasswordChanged is an exported constant or variable used by the authentication engine.
	AuditPasswordChanged = "PASSWORD_CHANGED"
	// AuditPasswordChangeFailed is an exported constant or variable used by the authentication engine.
	AuditPasswordChangeFailed = "PASSWORD_CHANGE_FAILED"
	// AuditHighRiskPattern is an exported constant or variable used by the authentication engine.
	AuditHighRiskPattern = "HIGH_RISK_PATTERN_DETECTED"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	action string,
	success bool,
	accountID int64,
	err error,
	detailBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var detail map[string]string
	if detailBuilder != nil {
		detail = detailBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		Action:    action,
		AccountID: accountID,
		Detail:    detail,
		Origin:    originFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}
