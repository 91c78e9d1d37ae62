package marketauth

import (
	"context"
	"log"
	"time"
)

// Lock reasons persisted on the account row.
const (
	lockReasonFailedLogins = "Too many failed login attempts"
	lockReasonHighRisk     = "High risk activity pattern detected"
)

// lockAccount persists the lock on the account row, emits the audit entry,
// and schedules the automatic unlock.
func (e *Engine) lockAccount(ctx context.Context, account AccountRecord, reason string) error {
	now := time.Now().UTC()
	if err := e.accounts.SetAccountLock(ctx, account.ID, now, reason); err != nil {
		return err
	}

	e.metricInc(MetricAccountLocked)
	e.emitAudit(ctx, AuditAccountLocked, true, account.ID, nil, func() map[string]string {
		return map[string]string{
			"email":  account.Email,
			"reason": reason,
		}
	})

	if e.config.Lockout.UnlockAfter > 0 {
		e.scheduleUnlock(account.Email)
	}
	return nil
}

// scheduleUnlock arms a one-shot unlock timer for the email, replacing any
// pending one. Timers are process-local; the stored lock timestamp plus the
// lazy check in Login covers restarts.
func (e *Engine) scheduleUnlock(email string) {
	e.unlockMu.Lock()
	defer e.unlockMu.Unlock()

	if timer, ok := e.unlockTimers[email]; ok {
		timer.Stop()
	}

	e.unlockTimers[email] = time.AfterFunc(e.config.Lockout.UnlockAfter, func() {
		if err := e.Unlock(context.Background(), email); err != nil {
			log.Print("marketauth: scheduled unlock failed")
		}
	})
}

// clearElapsedLock unlocks an account whose stored lock has outlived the
// configured window. The in-process timer does not survive restarts; the
// stored lock timestamp does, so Login and Refresh both check it lazily.
// Returns true when the lock was cleared and the passed record updated.
func (e *Engine) clearElapsedLock(ctx context.Context, account *AccountRecord) (bool, error) {
	if account.LockedAt == nil || e.config.Lockout.UnlockAfter <= 0 {
		return false, nil
	}
	if time.Since(*account.LockedAt) < e.config.Lockout.UnlockAfter {
		return false, nil
	}

	if err := e.Unlock(ctx, account.Email); err != nil {
		return false, err
	}
	account.Active = true
	account.LockedAt = nil
	account.LockedReason = ""
	return true, nil
}

func (e *Engine) cancelUnlockTimer(email string) {
	e.unlockMu.Lock()
	defer e.unlockMu.Unlock()

	if timer, ok := e.unlockTimers[email]; ok {
		timer.Stop()
		delete(e.unlockTimers, email)
	}
}

// Unlock reopens a locked account: the active flag is restored, the lock
// timestamp and reason are cleared, and the lockout counters for the email
// are reset. Idempotent — unlocking an already-open account changes no
// state and emits no audit entry. Callable by the scheduled timer or an
// administrator.
//
// Unlock may return an error when input validation, dependency calls, or security checks fail.
// Unlock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Unlock(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}

	if account.Active && account.LockedAt == nil {
		return nil
	}

	if err := e.accounts.ClearAccountLock(ctx, account.ID); err != nil {
		return err
	}

	e.cancelUnlockTimer(email)
	if err := e.lockouts.ResetAll(ctx, email); err != nil {
		log.Print("marketauth: lockout counter reset failed on unlock")
	}

	e.metricInc(MetricAccountUnlocked)
	e.emitAudit(ctx, AuditAccountUnlocked, true, account.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
		}
	})

	return nil
}
