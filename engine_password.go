package marketauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/quayside/marketauth/password"
)

// ChangePassword verifies the current password, policy-checks and hashes
// the new one, persists it, and invalidates the stored session so every
// device must log in again. The lockout counters for the account are reset
// afterward.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, accountID int64, currentPass, newPass string) error {
	if e == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	account, err := e.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		reason := "account_load_failed"
		if errors.Is(err, ErrAccountNotFound) {
			reason = "account_not_found"
		}
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
		return err
	}

	currentOK, err := e.passwordHash.Verify(currentPass, account.PasswordHash)
	if err != nil || !currentOK {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "invalid_current_password",
			}
		})
		return ErrInvalidCredentials
	}

	if result := password.Validate(newPass); !result.Valid {
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "policy_violation",
			}
		})
		return fmt.Errorf("%w: %s", ErrPasswordPolicy, strings.Join(result.Errors, "; "))
	}

	samePassword, err := e.passwordHash.Verify(newPass, account.PasswordHash)
	if err == nil && samePassword {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, ErrPasswordReuse, func() map[string]string {
			return map[string]string{
				"reason": "password_reuse",
			}
		})
		return ErrPasswordReuse
	}

	newHash, err := e.passwordHash.Hash(newPass)
	if err != nil {
		return err
	}
	currentPass = ""
	newPass = ""

	if err := e.accounts.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": "update_hash_failed",
			}
		})
		return err
	}

	if err := e.sessions.Invalidate(ctx, accountID); err != nil {
		log.Print("marketauth: session invalidation failed after password change")
		e.emitAudit(ctx, AuditPasswordChangeFailed, false, accountID, ErrSessionInvalidationFailed, func() map[string]string {
			return map[string]string{
				"reason": "session_invalidation_failed",
			}
		})
		return errors.Join(ErrSessionInvalidationFailed, err)
	}
	e.metricInc(MetricSessionInvalidated)

	// Counter reset is best-effort and must not block a successful change.
	if err := e.lockouts.ResetAll(ctx, account.Email); err != nil {
		log.Print("marketauth: lockout counter reset failed after password change")
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, AuditPasswordChanged, true, accountID, nil, nil)

	return nil
}
