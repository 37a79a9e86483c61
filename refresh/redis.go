package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	markStatusNotFound    int64 = 0
	markStatusAlreadyUsed int64 = 1
	markStatusMarked      int64 = 2

	revokeStatusNotFound int64 = 0
	revokeStatusRevoked  int64 = 1
)

// markUsedScript compare-and-sets the used flag (byte 2, 1-based) in place.
// Both the already-used and not-found outcomes are decided in the same single
// round trip, so the two failure modes are not distinguishable by timing.
const markUsedScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 2) == 1 then
  return 1
end
local updated = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3)
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], updated, "PX", ttl)
else
  redis.call("SET", KEYS[1], updated)
end
return 2
`

var markUsedLua = redis.NewScript(markUsedScript)

// revokeScript sets the revoked flag (byte 3, 1-based). Revocation is
// monotone, so re-revoking an already revoked record succeeds.
const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local updated = string.sub(data, 1, 2) .. string.char(1) .. string.sub(data, 4)
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], updated, "PX", ttl)
else
  redis.call("SET", KEYS[1], updated)
end
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore is the Redis-backed [Store] implementation.
type RedisStore struct {
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a [RedisStore]. prefix namespaces record keys;
// retention bounds storage-level record lifetime (zero keeps records
// indefinitely for an external reaper).
func NewRedisStore(redisClient redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "rt"
	}
	return &RedisStore{
		redis:     redisClient,
		prefix:    prefix,
		retention: retention,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + token
}

// Create persists a new record. The opaque token must be unused as a key;
// collisions surface as [ErrDuplicateToken].
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	encoded, err := Encode(rec)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.key(rec.Token), encoded, s.retention).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrDuplicateToken
	}

	return nil
}

// FindByToken loads the record stored under token.
func (s *RedisStore) FindByToken(ctx context.Context, token string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rec.Token = token

	return rec, nil
}

// MarkUsed atomically transitions the used flag from false to true. Exactly
// one of any number of concurrent callers succeeds; the rest observe
// [ErrAlreadyUsed].
func (s *RedisStore) MarkUsed(ctx context.Context, token string) error {
	status, err := markUsedLua.Run(ctx, s.redis, []string{s.key(token)}).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	switch status {
	case markStatusMarked:
		return nil
	case markStatusAlreadyUsed:
		return ErrAlreadyUsed
	case markStatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected mark status %d", ErrStoreUnavailable, status)
	}
}

// Revoke sets the revoked flag. The flag is monotone; revoking an already
// revoked record is a no-op success.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	status, err := revokeLua.Run(ctx, s.redis, []string{s.key(token)}).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if status == revokeStatusNotFound {
		return ErrNotFound
	}
	return nil
}
