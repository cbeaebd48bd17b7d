package footlib

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisAdmissionPrefix = "footprint:admission"

// RedisAdmissionLimiter is a fixed window counter stored in Redis. It
// is useful if there are several footprint instances behind a balancer
// and they have to share quotas.
//
// Each identity has a counter key which expires at the end of the
// window. Window starts with the first request of the identity: the
// key is created with its expiration in the same transaction as the
// first increment.
type RedisAdmissionLimiter struct {
	client      redis.UniversalClient
	prefix      string
	window      time.Duration
	maxRequests int
}

func (r *RedisAdmissionLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := r.key(identity)
	pipe := r.client.TxPipeline()

	pipe.SetNX(ctx, key, 0, r.window)

	count := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("cannot increment a counter: %w", err)
	}

	// a counter without expiration blocks identity forever
	if ttl.Val() < 0 {
		if err := r.client.PExpire(ctx, key, r.window).Err(); err != nil {
			return false, fmt.Errorf("cannot set expiration of a counter: %w", err)
		}
	}

	return count.Val() <= int64(r.maxRequests), nil
}

// RetryAfter returns a time left until a counter of the identity
// expires.
func (r *RedisAdmissionLimiter) RetryAfter(ctx context.Context, identity string) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.key(identity)).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot get expiration of a counter: %w", err)
	}

	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}

func (r *RedisAdmissionLimiter) Window() time.Duration {
	return r.window
}

func (r *RedisAdmissionLimiter) key(identity string) string {
	return r.prefix + ":" + identity
}

// NewRedisAdmissionLimiter creates a new limiter on top of given redis
// client. Non-positive values are replaced with defaults.
func NewRedisAdmissionLimiter(client redis.UniversalClient,
	prefix string,
	window time.Duration,
	maxRequests int) *RedisAdmissionLimiter {
	if window <= 0 {
		window = DefaultAdmissionWindow
	}

	if maxRequests <= 0 {
		maxRequests = DefaultAdmissionMaxRequests
	}

	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = defaultRedisAdmissionPrefix
	}

	return &RedisAdmissionLimiter{
		client:      client,
		prefix:      prefix,
		window:      window,
		maxRequests: maxRequests,
	}
}
