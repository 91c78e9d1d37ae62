package marketauth

import (
	"context"
	"log"
)

// actionRisk is the static action classification table. Unlisted actions
// default to low risk. The thresholds are coarse heuristics, not tuned
// security guarantees.
var actionRisk = map[string]RiskLevel{
	"LOGIN_FAILED":           RiskMedium,
	"TOKEN_REFRESH_FAILED":   RiskMedium,
	"PASSWORD_CHANGE_FAILED": RiskMedium,
	"ACCOUNT_LOCKED":         RiskHigh,
	"TOKEN_MISMATCH":         RiskHigh,
}

// DetectSuspiciousActivity classifies an authenticated action via the
// static risk table and appends it to the account's rolling activity
// window. When the window holds at least the configured number of events
// (default 10 within 1h), the account is force-locked and a
// HIGH_RISK_PATTERN_DETECTED entry is emitted.
//
// DetectSuspiciousActivity may return an error when input validation, dependency calls, or security checks fail.
// DetectSuspiciousActivity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DetectSuspiciousActivity(ctx context.Context, accountID int64, action, detail string) (RiskLevel, error) {
	if e == nil || e.activity == nil {
		return RiskLow, ErrEngineNotReady
	}

	risk := actionRisk[action]

	if err := e.activity.Record(ctx, accountID, action); err != nil {
		return risk, err
	}

	count, err := e.activity.CountRecent(ctx, accountID)
	if err != nil {
		return risk, err
	}

	if count < e.config.Suspicion.Threshold {
		return risk, nil
	}

	e.metricInc(MetricHighRiskDetected)
	e.emitAudit(ctx, AuditHighRiskPattern, true, accountID, nil, func() map[string]string {
		return map[string]string{
			"action": action,
			"detail": detail,
		}
	})

	account, err := e.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		// Escalation is best-effort, but a skipped force-lock must at
		// least leave a trace.
		log.Print("marketauth: high risk account load failed, lock skipped")
		return RiskHigh, nil
	}
	if account.LockedAt == nil {
		if err := e.lockAccount(ctx, account, lockReasonHighRisk); err != nil {
			log.Print("marketauth: high risk account lock persist failed")
		}
	}

	return RiskHigh, nil
}
