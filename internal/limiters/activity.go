package limiters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrActivityUnavailable indicates the activity backend is unreachable.
var ErrActivityUnavailable = errors.New("activity backend unavailable")

// ActivityConfig holds the rolling window for activity tracking.
type ActivityConfig struct {
	Window time.Duration
}

// ActivityTracker records per-account actions in a rolling time window.
// Entries live in a sorted set scored by event time; counting is a range
// trim followed by a cardinality read.
type ActivityTracker struct {
	redis  redis.UniversalClient
	config ActivityConfig
}

// NewActivityTracker creates a new activity tracker.
func NewActivityTracker(redisClient redis.UniversalClient, cfg ActivityConfig) *ActivityTracker {
	return &ActivityTracker{redis: redisClient, config: cfg}
}

func (t *ActivityTracker) key(accountID int64) string {
	return "aac:" + strconv.FormatInt(accountID, 10)
}

// Record appends an action for the account at the current time.
func (t *ActivityTracker) Record(ctx context.Context, accountID int64, action string) error {
	if t == nil || t.redis == nil || accountID == 0 {
		return nil
	}

	now := time.Now()
	key := t.key(accountID)
	// Nanosecond prefix keeps members unique even for repeated actions.
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + action

	_, err := t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		pipe.Expire(ctx, key, t.config.Window*2)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActivityUnavailable, err)
	}
	return nil
}

// CountRecent trims entries older than the window and returns how many
// actions remain inside it.
func (t *ActivityTracker) CountRecent(ctx context.Context, accountID int64) (int, error) {
	if t == nil || t.redis == nil || accountID == 0 {
		return 0, nil
	}

	key := t.key(accountID)
	cutoff := time.Now().Add(-t.config.Window).UnixMilli()

	if err := t.redis.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrActivityUnavailable, err)
	}

	count, err := t.redis.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrActivityUnavailable, err)
	}
	return int(count), nil
}
