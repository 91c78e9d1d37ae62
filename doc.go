// Package marketauth provides the session and credential lifecycle engine for a
// marketplace backend: JWT access tokens, rotating refresh tokens with a
// Redis-backed session store, brute-force lockout with timed auto-unlock, and
// an append-only security audit trail.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// marketauth is the public surface. It exposes [Engine], [Builder], [Config], and value
// types (LoginResult, AccountInfo, MetricsSnapshot, etc.). All internal coordination —
// lockout counters, activity windows, audit dispatch — lives under internal/ and is
// never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Own the account table. Accounts are read and mutated only through the caller's
//     [AccountProvider].
//
// # Performance contract
//
// VerifyAccessToken is the hot path. It must not allocate beyond the returned claims
// struct and must complete without Redis round-trips. Login, Refresh, and password
// operations are allowed a small constant number of Redis round-trips per call.
package marketauth
