package session

import "time"

// Record is the stored refresh-token state for one account. Exactly one
// record exists per account; a login or rotation overwrites it in place.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	AccountID     int64
	TokenHash     string
	ExpiresAt     time.Time
	InvalidatedAt time.Time // zero when the record is live
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Invalidated reports whether the record has been explicitly invalidated
// (logout, password change, or supersession by rotation).
func (r *Record) Invalidated() bool {
	return !r.InvalidatedAt.IsZero()
}

// Expired reports whether the record's expiry has passed at the given time.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
