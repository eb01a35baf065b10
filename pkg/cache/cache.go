// Package cache provides a two-tier read-through cache: a process-local
// expirable LRU backed by a shared Redis tier, queried in that order before
// falling back to the origin. Tier failures degrade to a direct origin
// lookup and are never surfaced to callers.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Tier is a single cache layer. A miss is (value="", ok=false, err=nil);
// errors indicate the tier itself failed.
type Tier interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// TwoTier composes a local and a remote tier with an origin loader.
// Reads go local, then remote, then origin; a value loaded from origin is
// written through to both tiers, remote first so the longer-lived tier is
// populated even if the process restarts.
type TwoTier struct {
	local  Tier
	remote Tier
	ttl    time.Duration
	logger *slog.Logger
}

// NewTwoTier creates a two-tier cache. Either tier may be nil, in which case
// that layer is skipped.
func NewTwoTier(local, remote Tier, ttl time.Duration, logger *slog.Logger) *TwoTier {
	return &TwoTier{
		local:  local,
		remote: remote,
		ttl:    ttl,
		logger: logger.With("system", "cache"),
	}
}

// GetOrLoad returns the cached value for key, consulting tiers in order and
// invoking load on a full miss. Load errors propagate unchanged and the
// result is not cached, so negative lookups are always re-tried.
func (c *TwoTier) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (string, error)) (string, error) {
	if c.local != nil {
		if v, ok, err := c.local.Get(ctx, key); err != nil {
			c.logger.Warn("local cache get failed", "key", key, "error", err)
		} else if ok {
			return v, nil
		}
	}

	if c.remote != nil {
		if v, ok, err := c.remote.Get(ctx, key); err != nil {
			c.logger.Warn("remote cache get failed", "key", key, "error", err)
		} else if ok {
			c.setLocal(ctx, key, v)
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return "", err
	}

	if c.remote != nil {
		if err := c.remote.Set(ctx, key, v, c.ttl); err != nil {
			c.logger.Warn("remote cache set failed", "key", key, "error", err)
		}
	}
	c.setLocal(ctx, key, v)

	return v, nil
}

func (c *TwoTier) setLocal(ctx context.Context, key, value string) {
	if c.local == nil {
		return
	}
	if err := c.local.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("local cache set failed", "key", key, "error", err)
	}
}
