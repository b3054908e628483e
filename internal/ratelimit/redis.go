package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "anfrage:ratelimit:"

// allowScript increments the counter unless it already reached the limit and
// starts the window expiry on the first hit.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return 0
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// Redis is a fixed-window limiter shared by every instance using the same
// Redis database.
type Redis struct {
	client redis.UniversalClient
	scope  string
	limit  int
	window time.Duration
}

// NewRedis creates a limiter whose keys live under scope.
func NewRedis(client redis.UniversalClient, scope string, limit int, window time.Duration) *Redis {
	return &Redis{client: client, scope: scope, limit: limit, window: window}
}

func (l *Redis) key(client string) string {
	return keyPrefix + l.scope + ":" + client
}

// Allow counts a request for key.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	res, err := allowScript.Run(ctx, l.client, []string{l.key(key)}, l.limit, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", l.scope, err)
	}
	return res == 1, nil
}

// Reset clears the counter for key.
func (l *Redis) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
