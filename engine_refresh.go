package marketauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/quayside/marketauth/jwt"
	"github.com/quayside/marketauth/session"
)

// Refresh exchanges a valid refresh token for a fresh pair, rotating the
// stored hash in one atomic conditional overwrite. A token that was already
// rotated out fails with [ErrRefreshMismatch] — the replay/theft signal.
// The checks run in a fixed order: signature, account, stored session, hash
// comparison, stored expiry, rotation; every branch writes an audit entry.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, e.refreshFailed(ctx, 0, ErrRefreshExpired, "token_expired")
		}
		return nil, e.refreshFailed(ctx, 0, ErrRefreshInvalid, "token_invalid")
	}
	accountID := claims.AccountID()

	account, err := e.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, e.refreshFailed(ctx, accountID, ErrAccountNotFound, "account_not_found")
		}
		return nil, e.refreshFailed(ctx, accountID, err, "account_load_failed")
	}
	if account.LockedAt != nil {
		// Same lazy check as Login: a stored lock whose window has passed
		// must not keep rejecting refreshes after a process restart.
		if cleared, err := e.clearElapsedLock(ctx, &account); err != nil {
			return nil, e.refreshFailed(ctx, accountID, err, "unlock_failed")
		} else if !cleared {
			return nil, e.refreshFailed(ctx, accountID, ErrAccountDeactivated, "account_deactivated")
		}
	}
	if !account.Active {
		return nil, e.refreshFailed(ctx, accountID, ErrAccountDeactivated, "account_deactivated")
	}

	record, err := e.sessions.GetActive(ctx, accountID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, e.refreshFailed(ctx, accountID, ErrNoStoredSession, "no_stored_session")
		}
		return nil, e.refreshFailed(ctx, accountID, err, "session_load_failed")
	}
	if record.Invalidated() {
		return nil, e.refreshFailed(ctx, accountID, ErrNoStoredSession, "session_invalidated")
	}

	providedHash := jwt.HashToken(refreshToken)
	if subtle.ConstantTimeCompare([]byte(providedHash), []byte(record.TokenHash)) != 1 {
		e.metricInc(MetricRefreshReuseDetected)
		return nil, e.refreshFailed(ctx, accountID, ErrRefreshMismatch, "token_mismatch")
	}

	now := time.Now()
	if record.Expired(now) {
		return nil, e.refreshFailed(ctx, accountID, ErrRefreshExpired, "session_expired")
	}

	access, refresh, err := e.issuePair(account)
	if err != nil {
		return nil, e.refreshFailed(ctx, accountID, err, "token_issue_failed")
	}

	// Conditional overwrite keyed on the hash verified above. Two racing
	// refresh calls cannot both rotate: the loser fails the compare inside
	// the store and surfaces as a mismatch.
	err = e.sessions.Rotate(ctx, accountID, providedHash, jwt.HashToken(refresh), now.Add(e.config.JWT.RefreshTTL))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrHashMismatch):
			e.metricInc(MetricRefreshReuseDetected)
			return nil, e.refreshFailed(ctx, accountID, ErrRefreshMismatch, "token_mismatch")
		case errors.Is(err, session.ErrInvalidated), errors.Is(err, session.ErrNotFound):
			return nil, e.refreshFailed(ctx, accountID, ErrNoStoredSession, "session_invalidated")
		case errors.Is(err, session.ErrExpired):
			return nil, e.refreshFailed(ctx, accountID, ErrRefreshExpired, "session_expired")
		default:
			return nil, e.refreshFailed(ctx, accountID, err, "rotate_failed")
		}
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, AuditTokenRefreshed, true, accountID, nil, nil)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      accountInfo(account),
	}, nil
}

// refreshFailed bumps the failure metric, writes the audit entry with the
// branch reason, and passes the typed error back unchanged.
func (e *Engine) refreshFailed(ctx context.Context, accountID int64, err error, reason string) error {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, AuditTokenRefreshFailed, false, accountID, err, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
	return err
}
