package marketauth

import (
	"context"
	"log"
	"time"
)

// PurgeSessions deletes stored session records that are expired or
// invalidated and returns the number removed. Housekeeping, not a hot-path
// operation.
//
// PurgeSessions may return an error when input validation, dependency calls, or security checks fail.
// PurgeSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PurgeSessions(ctx context.Context) (int, error) {
	if e == nil || e.sessions == nil {
		return 0, ErrEngineNotReady
	}

	count, err := e.sessions.Purge(ctx)
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.Add(MetricSessionsPurged, uint64(count))
	}
	return count, nil
}

// PurgeAuditLog deletes audit entries older than the cutoff and returns the
// number removed. A zero cutoff applies the configured retention window
// (default 30 days). No-op when a custom audit sink is installed.
//
// PurgeAuditLog may return an error when input validation, dependency calls, or security checks fail.
// PurgeAuditLog does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PurgeAuditLog(ctx context.Context, olderThan time.Time) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	if e.auditStore == nil {
		return 0, nil
	}

	if olderThan.IsZero() {
		olderThan = time.Now().Add(-e.config.Audit.Retention)
	}

	count, err := e.auditStore.Purge(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.Add(MetricAuditEntriesPurged, uint64(count))
	}
	return count, nil
}

// RunMaintenance executes one housekeeping pass: session purge followed by
// audit retention purge. The janitor loop calls this on its interval;
// callers may also invoke it directly (e.g. from a cron-shaped job).
//
// RunMaintenance may return an error when input validation, dependency calls, or security checks fail.
// RunMaintenance does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RunMaintenance(ctx context.Context) error {
	if _, err := e.PurgeSessions(ctx); err != nil {
		return err
	}
	if _, err := e.PurgeAuditLog(ctx, time.Time{}); err != nil {
		return err
	}
	return nil
}

func (e *Engine) janitor(interval time.Duration) {
	defer close(e.janitorDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.RunMaintenance(context.Background()); err != nil {
				log.Print("marketauth: maintenance pass failed")
			}
		case <-e.janitorStop:
			return
		}
	}
}
