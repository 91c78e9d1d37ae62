// Package session persists refresh-token records, one per account.
//
// The store is the durable source of truth for "is this refresh token still
// good". A record holds the SHA-256 hash of the current refresh token, its
// expiry, and an optional invalidation timestamp. Logout, password change,
// and rotation never delete the record outright — they set the invalidation
// timestamp, leaving the row visible to the audit trail until the periodic
// purge removes it.
//
// Rotation is an atomic Lua compare-and-swap keyed on the previous hash, so
// two concurrent refresh calls presenting the same token cannot both
// succeed.
//
// # What this package must NOT do
//
//   - See raw refresh tokens — callers hash before storing.
//   - Decide protocol outcomes — it reports state; the Engine maps state to
//     typed failures.
package session
