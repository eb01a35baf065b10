package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kektor/gallery-images/pkg/cache"
)

// Cached decorates a Client with the two-tier identity cache. Only resolved
// identities are cached; not-found and upstream failures always re-consult
// the origin so staleness is bounded by the cache TTL.
type Cached struct {
	inner Client
	cache *cache.TwoTier
}

// NewCached wraps client with the given cache.
func NewCached(client Client, c *cache.TwoTier) *Cached {
	return &Cached{
		inner: client,
		cache: c,
	}
}

func (c *Cached) FetchByID(ctx context.Context, id int64) (*User, error) {
	return c.fetch(ctx, fmt.Sprintf("by_id:%d", id), func(ctx context.Context) (*User, error) {
		return c.inner.FetchByID(ctx, id)
	})
}

func (c *Cached) FetchByName(ctx context.Context, username string) (*User, error) {
	return c.fetch(ctx, "by_username:"+username, func(ctx context.Context) (*User, error) {
		return c.inner.FetchByName(ctx, username)
	})
}

func (c *Cached) fetch(ctx context.Context, key string, load func(ctx context.Context) (*User, error)) (*User, error) {
	raw, err := c.cache.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		u, err := load(ctx)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(u)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		// A corrupt cache entry degrades to a direct lookup.
		return load(ctx)
	}

	return &u, nil
}
