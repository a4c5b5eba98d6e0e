package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockoutPrefix        = "auth:lockout:"
	defaultLockThreshold = 5
	defaultLockWindow    = 15 * time.Minute
)

// LockoutStore counts failed logins per normalized email in a Redis hash.
// Key format: auth:lockout:<email> with fields failed_count and locked_until.
// Failures older than the window expire with the key.
type LockoutStore struct {
	client    *redis.Client
	threshold int
	window    time.Duration
	now       func() time.Time
}

// NewLockoutStore creates a LockoutStore wrapping the given Redis client.
// Non-positive threshold or window fall back to 5 attempts in 15 minutes.
func NewLockoutStore(client *redis.Client, threshold int, window time.Duration) *LockoutStore {
	if threshold <= 0 {
		threshold = defaultLockThreshold
	}
	if window <= 0 {
		window = defaultLockWindow
	}
	return &LockoutStore{client: client, threshold: threshold, window: window, now: time.Now}
}

// Locked reports whether key is inside an active lockout window.
func (s *LockoutStore) Locked(ctx context.Context, key string) (bool, error) {
	raw, err := s.client.HGet(ctx, s.key(key), "locked_until").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}

	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("lockout check: corrupt locked_until %q: %w", raw, err)
	}
	return s.now().Unix() < until, nil
}

// RecordFailure increments the failure count and locks key once the
// threshold is reached.
func (s *LockoutStore) RecordFailure(ctx context.Context, key string) (bool, error) {
	redisKey := s.key(key)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, redisKey, "failed_count", 1)
		p.Expire(ctx, redisKey, s.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lockout record: %w", err)
	}

	if int(incr.Val()) < s.threshold {
		return false, nil
	}

	lockedUntil := s.now().Add(s.window).Unix()
	if err := s.client.HSet(ctx, redisKey, "locked_until", lockedUntil).Err(); err != nil {
		return false, fmt.Errorf("lockout set: %w", err)
	}
	return true, nil
}

// Clear forgets all failures for key.
func (s *LockoutStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *LockoutStore) key(k string) string {
	return lockoutPrefix + k
}
