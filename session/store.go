package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no record exists for the account.
	ErrNotFound = errors.New("session record not found")
	// ErrHashMismatch is returned when the presented hash does not equal the
	// stored one. This is the replay/theft signal for rotated-out tokens.
	ErrHashMismatch = errors.New("refresh hash mismatch")
	// ErrInvalidated is returned when the record carries an invalidation
	// timestamp (logout, password change, or supersession).
	ErrInvalidated = errors.New("session record invalidated")
	// ErrExpired is returned when the stored expiry has passed.
	ErrExpired = errors.New("session record expired")
	// ErrRedisUnavailable wraps backend failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	rotateStatusNotFound    int64 = 0
	rotateStatusRotated     int64 = 1
	rotateStatusMismatch    int64 = 2
	rotateStatusInvalidated int64 = 3
	rotateStatusExpired     int64 = 4
)

const rotateScript = `
local key = KEYS[1]
local provided = ARGV[1]
local next_hash = ARGV[2]
local now_ms = tonumber(ARGV[3])
local expires_ms = ARGV[4]

if redis.call("EXISTS", key) == 0 then
  return 0
end

local cur = redis.call("HGET", key, "token_hash")
if cur ~= provided then
  return 2
end

local inv = tonumber(redis.call("HGET", key, "invalidated_at") or "0")
if inv > 0 then
  return 3
end

local exp = tonumber(redis.call("HGET", key, "expires_at") or "0")
if exp <= now_ms then
  return 4
end

redis.call("HSET", key, "token_hash", next_hash, "expires_at", expires_ms, "invalidated_at", "0", "updated_at", ARGV[3])
redis.call("PEXPIREAT", key, expires_ms)
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// Store is a Redis-backed refresh-token store with upsert-by-account
// semantics and atomic compare-and-swap rotation.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets
// the Redis key namespace.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "mas"
	}
	return &Store{redis: redisClient, prefix: prefix}
}

func (s *Store) key(accountID int64) string {
	return s.prefix + ":" + strconv.FormatInt(accountID, 10)
}

// Put upserts the record for an account: a new call overwrites the previous
// hash/expiry and clears any invalidation. Logging in on a second device
// therefore supersedes the first device's session at the storage layer.
//
//	Performance: 2 Redis commands (HSET + PEXPIREAT) in one pipeline.
func (s *Store) Put(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) error {
	now := time.Now()
	key := s.key(accountID)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"token_hash", tokenHash,
			"expires_at", strconv.FormatInt(expiresAt.UnixMilli(), 10),
			"invalidated_at", "0",
			"created_at", strconv.FormatInt(now.UnixMilli(), 10),
			"updated_at", strconv.FormatInt(now.UnixMilli(), 10),
		)
		pipe.PExpireAt(ctx, key, expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// GetActive returns the current record for an account, including its
// invalidation state. Returns [ErrNotFound] when no record exists.
//
//	Performance: 1 Redis HGETALL.
func (s *Store) GetActive(ctx context.Context, accountID int64) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return decodeRecord(accountID, fields)
}

// Invalidate sets the invalidation timestamp on the current record. The row
// is kept, not deleted, so the audit trail can still see it. Idempotent:
// invalidating an already-invalidated or missing record is a no-op.
//
//	Performance: 1–2 Redis commands.
func (s *Store) Invalidate(ctx context.Context, accountID int64) error {
	key := s.key(accountID)

	current, err := s.redis.HGet(ctx, key, "invalidated_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ms, _ := strconv.ParseInt(current, 10, 64); ms > 0 {
		return nil
	}

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.redis.HSet(ctx, key, "invalidated_at", now, "updated_at", now).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Rotate atomically replaces the stored hash with nextHash, but only if the
// record is live and its current hash equals providedHash. The CAS prevents
// two concurrent refresh calls with the same token from both succeeding.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) Rotate(ctx context.Context, accountID int64, providedHash, nextHash string, expiresAt time.Time) error {
	now := time.Now()
	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(accountID)},
		providedHash,
		nextHash,
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(expiresAt.UnixMilli(), 10),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusRotated:
		return nil
	case rotateStatusNotFound:
		return ErrNotFound
	case rotateStatusMismatch:
		return ErrHashMismatch
	case rotateStatusInvalidated:
		return ErrInvalidated
	case rotateStatusExpired:
		return ErrExpired
	default:
		return fmt.Errorf("%w: unknown rotate script status %d", ErrRedisUnavailable, code)
	}
}

// Purge deletes records whose expiry has passed or which have been
// invalidated, and returns the number removed. Housekeeping only; never on
// the authentication hot path.
func (s *Store) Purge(ctx context.Context) (int, error) {
	var (
		cursor uint64
		purged int
	)
	now := time.Now().UnixMilli()

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return purged, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		for _, key := range keys {
			vals, err := s.redis.HMGet(ctx, key, "invalidated_at", "expires_at").Result()
			if err != nil {
				return purged, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}

			invalidated := parseMilli(vals[0]) > 0
			expired := parseMilli(vals[1]) <= now
			if !invalidated && !expired {
				continue
			}

			deleted, err := s.redis.Del(ctx, key).Result()
			if err != nil {
				return purged, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
			purged += int(deleted)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return purged, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func decodeRecord(accountID int64, fields map[string]string) (*Record, error) {
	hash, ok := fields["token_hash"]
	if !ok || hash == "" {
		return nil, fmt.Errorf("%w: record missing token hash", ErrRedisUnavailable)
	}

	rec := &Record{
		AccountID: accountID,
		TokenHash: hash,
		ExpiresAt: time.UnixMilli(parseMilli(fields["expires_at"])),
		CreatedAt: time.UnixMilli(parseMilli(fields["created_at"])),
		UpdatedAt: time.UnixMilli(parseMilli(fields["updated_at"])),
	}
	if ms := parseMilli(fields["invalidated_at"]); ms > 0 {
		rec.InvalidatedAt = time.UnixMilli(ms)
	}

	return rec, nil
}

func parseMilli(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}
