package drivers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emojilens/backend/internal/quota"
)

const (
	// Redis key prefix for quota records.
	quotaKeyPrefix = "quota:"
	// Records expire on their own well after the calendar-day rollover,
	// so stale keys never accumulate.
	defaultTTL = 48 * time.Hour
)

// RedisStore implements quota.Store on Redis, for deployments with more than
// one API instance behind a load balancer.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed quota store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements quota.Store.
// An unparsable value is logged and treated as a missing record.
func (s *RedisStore) Get(ctx context.Context, clientID string) (*quota.Record, error) {
	val, err := s.client.Get(ctx, s.key(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record quota.Record
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		log.Printf("[quota] discarding unparsable record for client=%s: %v", clientID, err)
		return nil, nil
	}
	return &record, nil
}

// Put implements quota.Store.
func (s *RedisStore) Put(ctx context.Context, clientID string, record quota.Record) error {
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(clientID), val, s.ttl).Err()
}

// Close implements quota.Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(clientID string) string {
	return quotaKeyPrefix + clientID
}
