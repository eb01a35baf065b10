package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Remote is the shared distributed tier backed by Redis. Keys are namespaced
// with a prefix so multiple caches can share one database.
type Remote struct {
	client *redis.Client
	prefix string
}

// NewRemote creates a remote tier over the given Redis client.
func NewRemote(client *redis.Client, prefix string) *Remote {
	return &Remote{
		client: client,
		prefix: prefix,
	}
}

// Get implements Tier.
func (r *Remote) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Tier.
func (r *Remote) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}
