package internaldefs

import (
	marketauth "github.com/quayside/marketauth"
)

// CounterDef defines a public type used by marketauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   marketauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by marketauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   marketauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: marketauth.MetricLoginSuccess, Name: "marketauth_login_success_total", Help: "Successful login attempts."},
	{ID: marketauth.MetricLoginFailure, Name: "marketauth_login_failure_total", Help: "Failed login attempts."},
	{ID: marketauth.MetricSignupSuccess, Name: "marketauth_signup_success_total", Help: "Successful account creations."},
	{ID: marketauth.MetricSignupDuplicate, Name: "marketauth_signup_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: marketauth.MetricRefreshSuccess, Name: "marketauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: marketauth.MetricRefreshFailure, Name: "marketauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: marketauth.MetricRefreshReuseDetected, Name: "marketauth_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: marketauth.MetricAccountLocked, Name: "marketauth_account_locked_total", Help: "Account lock operations."},
	{ID: marketauth.MetricAccountUnlocked, Name: "marketauth_account_unlocked_total", Help: "Account unlock operations."},
	{ID: marketauth.MetricHighRiskDetected, Name: "marketauth_high_risk_detected_total", Help: "Detected high-risk activity patterns."},
	{ID: marketauth.MetricSessionCreated, Name: "marketauth_session_created_total", Help: "Created sessions."},
	{ID: marketauth.MetricSessionInvalidated, Name: "marketauth_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: marketauth.MetricLogout, Name: "marketauth_logout_total", Help: "Single-session logout operations."},
	{ID: marketauth.MetricLogoutAll, Name: "marketauth_logout_all_total", Help: "Logout-all operations."},
	{ID: marketauth.MetricPasswordChangeSuccess, Name: "marketauth_password_change_success_total", Help: "Successful password changes."},
	{ID: marketauth.MetricPasswordChangeInvalidOld, Name: "marketauth_password_change_invalid_old_total", Help: "Password change attempts with invalid current password."},
	{ID: marketauth.MetricPasswordChangeReuseRejected, Name: "marketauth_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: marketauth.MetricSessionsPurged, Name: "marketauth_sessions_purged_total", Help: "Session records removed by maintenance."},
	{ID: marketauth.MetricAuditEntriesPurged, Name: "marketauth_audit_entries_purged_total", Help: "Audit log entries removed by retention."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: marketauth.MetricVerifyLatency, Name: "marketauth_verify_latency_seconds", Help: "Access token verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
