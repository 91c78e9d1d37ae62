package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps backend failures on read paths.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed append-only event log and the default [Sink].
// Entries live in a sorted set scored by event time, so retention purges
// are a single range deletion.
//
// Store satisfies the fire-and-forget contract: Emit swallows write
// failures, logs them locally, and counts them for the metrics exporter.
type Store struct {
	redis    redis.UniversalClient
	key      string
	failures atomic.Uint64
}

// NewStore creates an audit [Store]. key names the sorted set holding the
// log; an empty key selects the default.
func NewStore(redisClient redis.UniversalClient, key string) *Store {
	if key == "" {
		key = "maa:log"
	}
	return &Store{redis: redisClient, key: key}
}

// Emit appends the event. Entries are never mutated after the append; a
// write failure is logged and counted but never surfaced to the caller.
func (s *Store) Emit(ctx context.Context, event Event) {
	if s == nil || s.redis == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.failures.Add(1)
		log.Print("marketauth: audit event marshal failed")
		return
	}

	err = s.redis.ZAdd(ctx, s.key, redis.Z{
		Score:  float64(event.Timestamp.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		s.failures.Add(1)
		log.Print("marketauth: audit event write failed")
	}
}

// Purge deletes entries older than the cutoff and returns the number
// removed. Retention housekeeping, not a hot-path operation.
func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	removed, err := s.redis.ZRemRangeByScore(
		ctx,
		s.key,
		"-inf",
		fmt.Sprintf("(%d", olderThan.UnixMilli()),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(removed), nil
}

// Recent returns up to n of the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 {
		return []Event{}, nil
	}

	members, err := s.redis.ZRevRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	events := make([]Event, 0, len(members))
	for _, m := range members {
		var event Event
		if err := json.Unmarshal([]byte(m), &event); err != nil {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// WriteFailures returns the number of swallowed write failures since start.
func (s *Store) WriteFailures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}
