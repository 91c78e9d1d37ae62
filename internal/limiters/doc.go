// Package limiters provides the Redis-backed counters behind account
// lockout and suspicious activity detection.
//
// # Limiters
//
//   - [LockoutLimiter] — fixed-window failed login counter keyed by
//     (email, origin). Crossing the threshold tells the caller to lock
//     the account.
//   - [ActivityTracker] — rolling-window action log per account used to
//     score recent activity bursts.
//
// Both are nil-safe: calling any method on a nil receiver is a no-op.
//
// # Architecture boundaries
//
// Each limiter owns its own Redis key namespace and error types. Policy
// thresholds come from Config structs supplied at construction time.
//
// # What this package must NOT do
//
//   - Import the engine package or any sibling internal package.
//   - Make policy decisions beyond counting — the engine decides
//     consequences.
package limiters
