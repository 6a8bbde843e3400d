package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// allowScript increments the counter and makes sure it carries a TTL in the
// same round trip. A counter found without a TTL is given one again.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimitRepository keeps fixed-window request counters in Redis.
type RateLimitRepository struct {
	redis  *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimitRepository(redis *redis.Client, prefix string, limit int64, window time.Duration) *RateLimitRepository {
	return &RateLimitRepository{
		redis:  redis,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow increments the counter for key and reports whether the caller is still
// within the limit for the current window.
func (r *RateLimitRepository) Allow(ctx context.Context, key string) (bool, error) {
	count, err := allowScript.Run(ctx, r.redis, []string{r.counterKey(key)}, r.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	return count <= r.limit, nil
}

func (r *RateLimitRepository) counterKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
