package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR the window key, arm its expiry on first hit, report count + ttl.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// WindowCounter is a fixed-window hit counter shared by every API replica.
type WindowCounter struct {
	client *Client
	prefix string
}

func NewWindowCounter(client *Client, prefix string) *WindowCounter {
	if prefix == "" {
		prefix = "tenanthub:ratelimit:"
	}
	return &WindowCounter{client: client, prefix: prefix}
}

// Hit counts one request for key in the current window and returns the
// count so far and the time until the window resets.
func (w *WindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := hitScript.Run(ctx, w.client.redisdb, []string{w.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate window hit: %w", err)
	}

	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate window hit: unexpected reply %v", res)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}

	return res[0], ttl, nil
}
