package marketauth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/quayside/marketauth/internal/audit"
	"github.com/quayside/marketauth/internal/limiters"
	"github.com/quayside/marketauth/jwt"
	"github.com/quayside/marketauth/password"
	"github.com/quayside/marketauth/session"
)

// Engine defines a public type used by marketauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	accounts     AccountProvider
	sessions     *session.Store
	codec        *jwt.Codec
	passwordHash *password.Argon2
	lockouts     *limiters.LockoutLimiter
	activity     *limiters.ActivityTracker
	audit        *audit.Dispatcher
	auditStore   *audit.Store
	metrics      *Metrics

	unlockMu     sync.Mutex
	unlockTimers map[string]*time.Timer

	janitorStop chan struct{}
	janitorDone chan struct{}
	closeOnce   sync.Once
}

// Close releases background resources: the janitor loop, pending unlock
// timers, and the audit dispatcher (drained before return).
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.janitorStop != nil {
			close(e.janitorStop)
			<-e.janitorDone
		}

		e.unlockMu.Lock()
		for email, timer := range e.unlockTimers {
			timer.Stop()
			delete(e.unlockTimers, email)
		}
		e.unlockMu.Unlock()

		if e.audit != nil {
			e.audit.Close()
		}
	})
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditWriteFailures returns the number of swallowed audit log writes. Zero
// when a custom sink is installed.
func (e *Engine) AuditWriteFailures() uint64 {
	if e == nil || e.auditStore == nil {
		return 0
	}
	return e.auditStore.WriteFailures()
}

// FailureCount describes the failurecount operation and its observable behavior.
//
// FailureCount may return an error when input validation, dependency calls, or security checks fail.
// FailureCount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) FailureCount(ctx context.Context, email, origin string) (int, error) {
	if e == nil || e.lockouts == nil {
		return 0, ErrEngineNotReady
	}
	return e.lockouts.FailureCount(ctx, normalizeEmail(email), origin)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// VerifyAccessToken verifies an access token and returns its claims. The
// check is pure CPU: no Redis round-trip, no account lookup. Stateless
// revocation is intentional; access tokens simply expire.
func (e *Engine) VerifyAccessToken(ctx context.Context, tokenStr string) (*jwt.Claims, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	claims, err := e.codec.ParseAccess(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (e *Engine) issuePair(account AccountRecord) (access, refresh string, err error) {
	access, err = e.codec.IssueAccess(account.ID, account.Email, string(account.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err = e.codec.IssueRefresh(account.ID, account.Email, string(account.Role))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func accountInfo(account AccountRecord) AccountInfo {
	return AccountInfo{
		ID:    account.ID,
		Email: account.Email,
		Role:  account.Role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
