// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resetstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "housing:reset:"

// RedisStore keeps codes in Redis and lets key TTLs do the expiry.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), now: time.Now}, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(email string) string {
	return redisKeyPrefix + NormalizeEmail(email)
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	e.Email = NormalizeEmail(e.Email)
	ttl := e.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("reset code for %s already expired", e.Email)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode reset code: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(e.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (Entry, error) {
	raw, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read reset code: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to decode reset code: %w", err)
	}
	return e, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, redisKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete reset code: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op; Redis expires keys on its own.
func (s *RedisStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
