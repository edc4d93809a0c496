package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps an opaque session key to a user id with a sliding TTL.
// Keys are expected to be already hashed by the caller; raw cookie values never reach redis.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

func (s *SessionStore) Put(ctx context.Context, key string, userID uint) error {
	return s.rdb.Set(ctx, sessionKeyPrefix+key, strconv.FormatUint(uint64(userID), 10), s.ttl).Err()
}

// Get returns the user id for key and refreshes its TTL.
func (s *SessionStore) Get(ctx context.Context, key string) (uint, error) {
	val, err := s.rdb.GetEx(ctx, sessionKeyPrefix+key, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+key).Err()
}
