package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches the per-user session token so the auth middleware can check
// single-session validity without hitting MySQL on every request.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(userID uint64) string {
	return "session:" + strconv.FormatUint(userID, 10)
}

// SetSessionToken records the only valid session token for the user.
func (s *Store) SetSessionToken(ctx context.Context, userID uint64, token string) error {
	return s.client.Set(ctx, sessionKey(userID), token, s.ttl).Err()
}

// GetSessionToken returns the cached session token, or "" on a cache miss.
func (s *Store) GetSessionToken(ctx context.Context, userID uint64) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// DeleteSessionToken drops the cached token, forcing the next check to the DB.
func (s *Store) DeleteSessionToken(ctx context.Context, userID uint64) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
