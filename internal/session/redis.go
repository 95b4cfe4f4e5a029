package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "session:"

// RedisStore is the canonical Store backend: sessions survive process
// restarts and are valid across all serving instances, with Redis enforcing
// the TTL natively.
type RedisStore struct {
	rdb   *redis.Client
	codec *Codec
	ttl   time.Duration
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(rdb *redis.Client, codec *Codec, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, codec: codec, ttl: ttl}
}

// Create issues a signed token and stores the mapping with the fixed TTL.
func (s *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	token, err := s.codec.Issue()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, keyPrefix+token, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the owning user id, or ok=false for tokens that are
// malformed, unknown, expired, or unreadable because the store is down.
func (s *RedisStore) Resolve(ctx context.Context, token string) (int64, bool) {
	if !s.codec.Verify(token) {
		return 0, false
	}

	val, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("session store unreachable, treating caller as unauthenticated")
		}
		return 0, false
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// Revoke deletes the token mapping. Revoking an unknown token is a no-op.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
