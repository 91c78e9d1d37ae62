// Package password implements credential strength policy and password
// hashing for marketauth.
//
// # Policy
//
// [Validate] is a pure function: it checks a candidate password against a
// fixed rule set (length bounds, character classes, a denylist of common
// passwords) and collects every violation instead of stopping at the first.
//
// # Hashing
//
// Hashes are Argon2id, encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports whether a stored hash was produced with
// weaker parameters than currently configured, so the caller can re-hash on
// the next successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other marketauth package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
