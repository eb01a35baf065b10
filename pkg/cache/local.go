package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Local is the in-process tier, an expirable LRU. The TTL is fixed at
// construction; per-call TTLs are ignored.
type Local struct {
	lru *expirable.LRU[string, string]
}

// NewLocal creates a local tier holding up to size entries for ttl.
func NewLocal(size int, ttl time.Duration) *Local {
	return &Local{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

// Get implements Tier.
func (l *Local) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := l.lru.Get(key)
	return v, ok, nil
}

// Set implements Tier.
func (l *Local) Set(_ context.Context, key, value string, _ time.Duration) error {
	l.lru.Add(key, value)
	return nil
}
