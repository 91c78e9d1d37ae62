package marketauth

import (
	"context"
	"time"

	internalaudit "github.com/quayside/marketauth/internal/audit"
)

// Role enumerates the account roles recognized by the marketplace.
type Role string

const (
	// RoleVendor is an exported constant or variable used by the authentication engine.
	RoleVendor Role = "vendor"
	// RoleShopper is an exported constant or variable used by the authentication engine.
	RoleShopper Role = "shopper"
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the recognized marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVendor, RoleShopper, RoleAdmin:
		return true
	default:
		return false
	}
}

// AccountRecord is the full account row returned by [AccountProvider]. The
// account table is owned by the caller; the engine only reads credentials and
// mutates lock state and password hashes through the provider.
type AccountRecord struct {
	ID           int64
	Email        string // normalized lower-case
	PasswordHash string
	Role         Role
	Active       bool
	LockedAt     *time.Time
	LockedReason string
}

// CreateAccountInput carries the fields needed to create an account.
// PasswordHash is already an encoded argon2id hash; the raw password never
// reaches the provider.
type CreateAccountInput struct {
	Email        string
	PasswordHash string
	Role         Role
}

// AccountProvider is the interface callers must implement to integrate
// marketauth with their account database. It covers credential lookup,
// account creation, password updates, and lock state transitions.
//
// GetAccountByEmail and GetAccountByID should return [ErrAccountNotFound]
// (possibly wrapped) when no row matches; any other error is treated as an
// infrastructure failure and propagated.
type AccountProvider interface {
	GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	GetAccountByID(ctx context.Context, accountID int64) (AccountRecord, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (AccountRecord, error)
	UpdatePasswordHash(ctx context.Context, accountID int64, newHash string) error
	SetAccountLock(ctx context.Context, accountID int64, lockedAt time.Time, reason string) error
	ClearAccountLock(ctx context.Context, accountID int64) error
}

// AccountInfo is the minimal account projection returned alongside token
// pairs. It never carries the password hash.
type AccountInfo struct {
	ID    int64
	Email string
	Role  Role
}

// LoginResult is returned by [Engine.Login], [Engine.SignUp], and
// [Engine.Refresh]: a freshly minted token pair plus the account projection.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Account      AccountInfo
}

// RiskLevel classifies an authenticated action for the suspicious activity
// heuristic.
type RiskLevel uint8

const (
	// RiskLow is an exported constant or variable used by the authentication engine.
	RiskLow RiskLevel = iota
	// RiskMedium is an exported constant or variable used by the authentication engine.
	RiskMedium
	// RiskHigh is an exported constant or variable used by the authentication engine.
	RiskHigh
)

// String describes the string operation and its observable behavior.
func (r RiskLevel) String() string {
	switch r {
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "low"
	}
}

// AuditEvent is the canonical security log record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives emitted audit events. The default sink is the
// Redis-backed log store; callers can substitute their own through
// [Builder.WithAuditSink].
type AuditSink = internalaudit.Sink
