// Package middleware exposes the HTTP adapter for access-token enforcement
// built on top of marketauth.Engine verification.
//
// [Guard] reads the Authorization header, calls Engine.VerifyAccessToken,
// and injects the verified claims into the request context. It also stamps
// the request origin and user agent into the context so downstream engine
// calls key their lockout counters and audit entries correctly.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.VerifyAccessToken.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject.
package middleware
