package marketauth

import "context"

// Logout sets the invalidation timestamp on the account's stored session.
// The record is kept, never deleted; the timestamp is the revocation fact
// the refresh path checks. Idempotent — logging out twice is a no-op.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accountID int64) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	err := e.sessions.Invalidate(ctx, accountID)
	if err == nil {
		e.metricInc(MetricLogout)
		e.metricInc(MetricSessionInvalidated)
	}
	e.emitAudit(ctx, AuditLogout, err == nil, accountID, err, nil)
	return err
}

// LogoutAll invalidates every session for the account. With one stored
// record per account this delegates to [Engine.Logout]; the separate entry
// point keeps the contract stable if sessions ever become per-device.
//
// LogoutAll may return an error when input validation, dependency calls, or security checks fail.
// LogoutAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LogoutAll(ctx context.Context, accountID int64) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	err := e.sessions.Invalidate(ctx, accountID)
	if err == nil {
		e.metricInc(MetricLogoutAll)
		e.metricInc(MetricSessionInvalidated)
	}
	e.emitAudit(ctx, AuditLogoutAll, err == nil, accountID, err, nil)
	return err
}
