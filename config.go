package marketauth

import (
	"bytes"
	"errors"
	"time"
)

// Config defines a public type used by marketauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT         JWTConfig
	Password    PasswordConfig
	Session     SessionConfig
	Lockout     LockoutConfig
	Suspicion   SuspicionConfig
	Audit       AuditConfig
	Maintenance MaintenanceConfig
	Metrics     MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by marketauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by marketauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by marketauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by marketauth APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Threshold   int
	Window      time.Duration
	UnlockAfter time.Duration // 0 = manual unlock only
}

// SuspicionConfig defines a public type used by marketauth APIs.
//
// SuspicionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SuspicionConfig struct {
	Window    time.Duration
	Threshold int
}

// AuditConfig defines a public type used by marketauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	LogKey     string
	Retention  time.Duration
}

// MaintenanceConfig defines a public type used by marketauth APIs.
//
// MaintenanceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MaintenanceConfig struct {
	Interval time.Duration // 0 disables the janitor loop
}

// MetricsConfig defines a public type used by marketauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 15m/7d token TTLs,
// 5-failure lockout with a 30 minute auto-unlock, 10-events-per-hour
// suspicion threshold, and 30 day audit retention. Token secrets are left
// empty and must be supplied before [Config.Validate] passes.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "marketauth",
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:         64 * 1024,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Session: SessionConfig{
			RedisPrefix: "mas",
		},
		Lockout: LockoutConfig{
			Threshold:   5,
			Window:      30 * time.Minute,
			UnlockAfter: 30 * time.Minute,
		},
		Suspicion: SuspicionConfig{
			Window:    time.Hour,
			Threshold: 10,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
			LogKey:     "maa:log",
			Retention:  30 * 24 * time.Hour,
		},
		Maintenance: MaintenanceConfig{
			Interval: 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = append([]byte(nil), cfg.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), cfg.JWT.RefreshSecret...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("both token secrets are required")
	}
	if bytes.Equal(c.JWT.AccessSecret, c.JWT.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.Lockout.Threshold <= 0 {
		return errors.New("lockout threshold must be positive")
	}
	if c.Lockout.Window < 0 || c.Lockout.UnlockAfter < 0 {
		return errors.New("lockout durations must not be negative")
	}
	if c.Suspicion.Threshold <= 0 || c.Suspicion.Window <= 0 {
		return errors.New("suspicion window and threshold must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	if c.Audit.Retention < 0 {
		return errors.New("audit retention must not be negative")
	}
	if c.Maintenance.Interval < 0 {
		return errors.New("maintenance interval must not be negative")
	}
	return nil
}
