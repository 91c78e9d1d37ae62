package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockoutUnavailable indicates the lockout backend is unreachable.
var ErrLockoutUnavailable = errors.New("lockout backend unavailable")

// LockoutConfig holds configuration for the failed login lockout limiter.
type LockoutConfig struct {
	Threshold int
	Window    time.Duration // 0 = counters never expire on their own
}

// LockoutLimiter tracks consecutive failed login attempts per
// (email, origin) pair and reports when the configured threshold is
// reached. Counters live in the shared Redis backend, so every engine
// instance sees the same tally.
type LockoutLimiter struct {
	redis  redis.UniversalClient
	config LockoutConfig
}

// NewLockoutLimiter creates a new lockout limiter.
func NewLockoutLimiter(redisClient redis.UniversalClient, cfg LockoutConfig) *LockoutLimiter {
	return &LockoutLimiter{redis: redisClient, config: cfg}
}

func (l *LockoutLimiter) key(email, origin string) string {
	return "alo:" + email + ":" + origin
}

// RecordFailure increments the failure counter for the given email and
// origin. It returns the updated count and whether the threshold has been
// reached (the caller should lock the account).
func (l *LockoutLimiter) RecordFailure(ctx context.Context, email, origin string) (int, bool, error) {
	if l == nil || l.redis == nil || email == "" {
		return 0, false, nil
	}

	count, err := l.redis.Incr(ctx, l.key(email, origin)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}

	if count == 1 && l.config.Window > 0 {
		// TTL on first failure so stale counters age out on their own.
		if err := l.redis.Expire(ctx, l.key(email, origin), l.config.Window).Err(); err != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
	}

	return int(count), count >= int64(l.config.Threshold), nil
}

// Reset clears the failure counter for one (email, origin) pair, e.g.
// after a successful login from that origin.
func (l *LockoutLimiter) Reset(ctx context.Context, email, origin string) error {
	if l == nil || l.redis == nil || email == "" {
		return nil
	}

	if err := l.redis.Del(ctx, l.key(email, origin)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

// ResetAll clears every counter recorded for the email across all
// origins. Used when an account is unlocked.
func (l *LockoutLimiter) ResetAll(ctx context.Context, email string) error {
	if l == nil || l.redis == nil || email == "" {
		return nil
	}

	var cursor uint64
	pattern := "alo:" + email + ":*"
	for {
		keys, next, err := l.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
		if len(keys) > 0 {
			if err := l.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// FailureCount returns the current failure count for the pair.
func (l *LockoutLimiter) FailureCount(ctx context.Context, email, origin string) (int, error) {
	if l == nil || l.redis == nil || email == "" {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, l.key(email, origin)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return int(count), nil
}
