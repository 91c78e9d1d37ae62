package marketauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/quayside/marketauth/jwt"
)

// Login authenticates an email/password pair and returns a fresh token pair
// plus the account projection. Failed attempts feed the lockout counter for
// the caller's (email, origin) key; the attempt that crosses the threshold
// locks the account. A locked account fails with [ErrAccountLocked] even
// when the password is correct.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	if e == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	origin := originFromContext(ctx)

	if email == "" || pass == "" {
		e.recordLoginFailure(ctx, email, origin, nil, "empty_credentials")
		return nil, ErrInvalidCredentials
	}

	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.recordLoginFailure(ctx, email, origin, nil, "account_not_found")
			return nil, ErrInvalidCredentials
		}
		// A provider outage is not a credential failure: it must not feed
		// the lockout counter, and the caller needs the real error.
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditLoginFailed, false, 0, err, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "account_load_failed",
			}
		})
		return nil, err
	}

	// Lock state is checked before credential verification so a locked
	// account answers identically for right and wrong passwords.
	if account.LockedAt != nil {
		cleared, err := e.clearElapsedLock(ctx, &account)
		if err != nil {
			return nil, err
		}
		if !cleared {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, AuditLoginFailed, false, account.ID, ErrAccountLocked, func() map[string]string {
				return map[string]string{
					"email":  email,
					"reason": "account_locked",
				}
			})
			return nil, ErrAccountLocked
		}
	}

	if !account.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditLoginFailed, false, account.ID, ErrAccountDeactivated, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "account_deactivated",
			}
		})
		return nil, ErrAccountDeactivated
	}

	ok, err := e.passwordHash.Verify(pass, account.PasswordHash)
	if err != nil || !ok {
		e.recordLoginFailure(ctx, email, origin, &account, "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	if e.config.Password.UpgradeOnLogin {
		if needsUpgrade, err := e.passwordHash.NeedsUpgrade(account.PasswordHash); err == nil && needsUpgrade {
			if upgradedHash, err := e.passwordHash.Hash(pass); err == nil {
				// Rehash update is best-effort and must not block successful login.
				if err := e.accounts.UpdatePasswordHash(ctx, account.ID, upgradedHash); err != nil {
					log.Print("marketauth: password hash upgrade update failed")
				}
			} else {
				log.Print("marketauth: password hash upgrade generation failed")
			}
		}
	}
	pass = ""

	if err := e.lockouts.Reset(ctx, email, origin); err != nil {
		// Counter reset is best-effort; a stale counter only shortens the
		// window to the next lock, never blocks a valid login.
		log.Print("marketauth: lockout counter reset failed")
	}

	result, err := e.establishSession(ctx, account, AuditLoginFailed)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, AuditLoginSuccess, true, account.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
		}
	})

	return result, nil
}

// establishSession mints a token pair and upserts the refresh hash. The
// failure audit action differs between login and signup callers.
func (e *Engine) establishSession(ctx context.Context, account AccountRecord, failAction string) (*LoginResult, error) {
	access, refresh, err := e.issuePair(account)
	if err != nil {
		e.emitAudit(ctx, failAction, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"email":  account.Email,
				"reason": "token_issue_failed",
			}
		})
		return nil, err
	}

	expiresAt := time.Now().Add(e.config.JWT.RefreshTTL)
	if err := e.sessions.Put(ctx, account.ID, jwt.HashToken(refresh), expiresAt); err != nil {
		e.emitAudit(ctx, failAction, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"email":  account.Email,
				"reason": "session_save_failed",
			}
		})
		return nil, err
	}

	e.metricInc(MetricSessionCreated)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      accountInfo(account),
	}, nil
}

// recordLoginFailure feeds the lockout counter and emits the failure audit
// entry. account is nil for attempts against unknown emails; those still
// count against the (email, origin) key but can never escalate to a lock.
func (e *Engine) recordLoginFailure(ctx context.Context, email, origin string, account *AccountRecord, reason string) {
	var accountID int64
	if account != nil {
		accountID = account.ID
	}

	_, locked, err := e.lockouts.RecordFailure(ctx, email, origin)
	if err != nil {
		log.Print("marketauth: lockout counter update failed")
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, AuditLoginFailed, false, accountID, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"email":  email,
			"reason": reason,
		}
	})

	if locked && account != nil && account.LockedAt == nil {
		if err := e.lockAccount(ctx, *account, lockReasonFailedLogins); err != nil {
			log.Print("marketauth: account lock persist failed")
		}
	}
}
