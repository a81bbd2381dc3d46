package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"synapse/internal/util"
)

const (
	sessionKeyPrefix = "synapse:session:"
	sessionOpTimeout = 3 * time.Second
)

// RedisSessionStore maps opaque bearer tokens to user IDs in Redis.
// Expiry is enforced by Redis itself via the key TTL, so logout and
// expiry both leave no state behind.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds a Redis-backed session store with the given
// session lifetime.
func NewRedisSessionStore(addr, password string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

func (s *RedisSessionStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sessionOpTimeout)
}

// NewSession mints an opaque token and stores the token -> userID mapping.
func (s *RedisSessionStore) NewSession(userID string) (string, error) {
	token := util.NewID()
	ctx, cancel := s.opCtx()
	defer cancel()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// GetUserIDByToken resolves a token. An absent or expired token is a miss,
// not an error.
func (s *RedisSessionStore) GetUserIDByToken(token string) (string, bool, error) {
	ctx, cancel := s.opCtx()
	defer cancel()
	userID, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

// DeleteSession invalidates a token. Deleting an unknown token succeeds.
func (s *RedisSessionStore) DeleteSession(token string) error {
	ctx, cancel := s.opCtx()
	defer cancel()
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
