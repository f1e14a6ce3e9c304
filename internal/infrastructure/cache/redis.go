package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/bandmate-backend/internal/logger"
)

const (
	DefaultTTL = 10 * time.Minute
	// DefaultFenceTTL bounds how long a fence blocks conditional writes.
	DefaultFenceTTL = 5 * time.Second
)

// setUnlessFenced writes ARGV[1] under KEYS[1] with a PX of ARGV[2] only when none of
// the remaining keys exist.
var setUnlessFenced = redis.NewScript(`
for i = 2, #KEYS do
	if redis.call("EXISTS", KEYS[i]) == 1 then
		return 0
	end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// Redis stores JSON values under string keys. A nil client turns every call into a no-op.
type Redis struct {
	client   *redis.Client
	ttl      time.Duration
	fenceTTL time.Duration
	logger   *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, fenceTTL: DefaultFenceTTL, logger: log}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

// GetJSON decodes the value under key into out. A missing key reports false with no error.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any) error {
	if r.isUnavailable() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, r.ttl).Err()
}

// SetJSONUnlessFenced stores value under key unless one of fences is set. It reports
// whether the value was written.
func (r *Redis) SetJSONUnlessFenced(ctx context.Context, key string, value any, fences ...string) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	if len(fences) == 0 {
		return true, r.SetJSON(ctx, key, value)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	keys := append([]string{key}, fences...)
	written, err := setUnlessFenced.Run(ctx, r.client, keys, b, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

// Fence sets the fence key for the fence window and deletes keys in the same transaction.
// Conditional writes naming the fence are refused until it expires.
func (r *Redis) Fence(ctx context.Context, fence string, keys ...string) error {
	if r.isUnavailable() {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, fence, 1, r.fenceTTL)
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil && r.logger != nil {
			r.logger.Warn("Cache: redis delete failed", "key", k, "pattern", pattern, "error", err)
		}
	}
	return iter.Err()
}
