package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// registerScript prunes, counts and conditionally records in one round trip
// so concurrent registrations for the same identifier cannot overshoot Max.
var registerScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= max then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// releaseScript drops a single member scored at the given time.
var releaseScript = redis.NewScript(`
local members = redis.call('ZRANGEBYSCORE', KEYS[1], ARGV[1], ARGV[1], 'LIMIT', 0, 1)
if #members > 0 then
  redis.call('ZREM', KEYS[1], members[1])
end
return #members
`)

// Redis keeps one sorted set of submission times per identifier.
type Redis struct {
	client    redis.UniversalClient
	policy    Policy
	keyPrefix string
}

// RedisOptions configures the connection used by NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient opens a client and checks the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Address, err)
	}
	return client, nil
}

// NewRedis returns a limiter storing state under keyPrefix.
func NewRedis(client redis.UniversalClient, policy Policy, keyPrefix string) *Redis {
	return &Redis{client: client, policy: policy, keyPrefix: keyPrefix}
}

// Register implements Limiter.
func (r *Redis) Register(ctx context.Context, identifier string, now time.Time) (bool, error) {
	allowed, err := registerScript.Run(ctx, r.client,
		[]string{r.key(identifier)},
		now.UnixMilli(),
		r.policy.Window.Milliseconds(),
		r.policy.Max,
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check for %s: %w", identifier, err)
	}
	return allowed == 1, nil
}

// Release implements Limiter.
func (r *Redis) Release(ctx context.Context, identifier string, at time.Time) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key(identifier)}, at.UnixMilli()).Err(); err != nil {
		return fmt.Errorf("releasing rate limit slot for %s: %w", identifier, err)
	}
	return nil
}

func (r *Redis) key(identifier string) string {
	return r.keyPrefix + ":" + identifier
}
