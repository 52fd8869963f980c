package redis

import (
	"context"
	"fmt"
	"time"

	"radius-admin/internal/bucketing"
	"radius-admin/internal/client"
)

// fixedWindowScript increments the counter and starts the window TTL
// only on the first attempt. INCR and PEXPIRE run as one script, so the
// counter can never be left without an expiry.
const fixedWindowScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`

// CounterStore backs the rate limiter with Redis counters. Keys shard
// by event bucket to spread hot login bursts across the keyspace.
type CounterStore struct {
	client  *client.RedisClient
	buckets *bucketing.Manager
}

func NewCounterStore(redisClient *client.RedisClient, buckets *bucketing.Manager) *CounterStore {
	return &CounterStore{client: redisClient, buckets: buckets}
}

func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	shard := s.buckets.EventBucket(key)
	redisKey := fmt.Sprintf("%d:%s", shard, key)

	result, err := s.client.Eval(ctx, fixedWindowScript, []string{redisKey}, window.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected rate counter result type %T", result)
	}
	return count, nil
}
