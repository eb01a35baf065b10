package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kektor/gallery-images/pkg/cache"
)

type fakeTier struct {
	data map[string]string
	sets []string
	err  error
}

func newFakeTier() *fakeTier {
	return &fakeTier{data: make(map[string]string)}
}

func (f *fakeTier) Get(_ context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeTier) Set(_ context.Context, key, value string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	f.sets = append(f.sets, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countingLoader(value string, err error) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		return value, err
	}, &calls
}

func TestTwoTier_LocalHit(t *testing.T) {
	local := newFakeTier()
	remote := newFakeTier()
	local.data["k"] = "local"
	remote.data["k"] = "remote"

	c := cache.NewTwoTier(local, remote, time.Minute, discardLogger())
	load, calls := countingLoader("origin", nil)

	v, err := c.GetOrLoad(context.Background(), "k", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "local" {
		t.Errorf("value = %q, want %q", v, "local")
	}
	if *calls != 0 {
		t.Errorf("origin calls = %d, want 0", *calls)
	}
}

func TestTwoTier_RemoteHitPopulatesLocal(t *testing.T) {
	local := newFakeTier()
	remote := newFakeTier()
	remote.data["k"] = "remote"

	c := cache.NewTwoTier(local, remote, time.Minute, discardLogger())
	load, calls := countingLoader("origin", nil)

	v, err := c.GetOrLoad(context.Background(), "k", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "remote" {
		t.Errorf("value = %q, want %q", v, "remote")
	}
	if *calls != 0 {
		t.Errorf("origin calls = %d, want 0", *calls)
	}
	if local.data["k"] != "remote" {
		t.Errorf("local tier not populated after remote hit")
	}
}

func TestTwoTier_MissLoadsAndWritesThrough(t *testing.T) {
	local := newFakeTier()
	remote := newFakeTier()

	c := cache.NewTwoTier(local, remote, time.Minute, discardLogger())
	load, calls := countingLoader("origin", nil)

	v, err := c.GetOrLoad(context.Background(), "k", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "origin" {
		t.Errorf("value = %q, want %q", v, "origin")
	}
	if *calls != 1 {
		t.Errorf("origin calls = %d, want 1", *calls)
	}
	if remote.data["k"] != "origin" || local.data["k"] != "origin" {
		t.Errorf("write-through incomplete: local=%v remote=%v", local.data, remote.data)
	}
}

func TestTwoTier_TierFailureDegradesToOrigin(t *testing.T) {
	local := newFakeTier()
	remote := newFakeTier()
	local.err = errors.New("local down")
	remote.err = errors.New("redis down")

	c := cache.NewTwoTier(local, remote, time.Minute, discardLogger())
	load, calls := countingLoader("origin", nil)

	v, err := c.GetOrLoad(context.Background(), "k", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "origin" {
		t.Errorf("value = %q, want %q", v, "origin")
	}
	if *calls != 1 {
		t.Errorf("origin calls = %d, want 1", *calls)
	}
}

func TestTwoTier_LoadErrorNotCached(t *testing.T) {
	local := newFakeTier()
	remote := newFakeTier()

	c := cache.NewTwoTier(local, remote, time.Minute, discardLogger())
	loadErr := errors.New("origin down")
	load, calls := countingLoader("", loadErr)

	if _, err := c.GetOrLoad(context.Background(), "k", load); !errors.Is(err, loadErr) {
		t.Fatalf("error = %v, want %v", err, loadErr)
	}
	if len(local.data) != 0 || len(remote.data) != 0 {
		t.Errorf("failed load was cached: local=%v remote=%v", local.data, remote.data)
	}
	if *calls != 1 {
		t.Errorf("origin calls = %d, want 1", *calls)
	}
}

func TestTwoTier_NilTiersSkipped(t *testing.T) {
	c := cache.NewTwoTier(nil, nil, time.Minute, discardLogger())
	load, calls := countingLoader("origin", nil)

	v, err := c.GetOrLoad(context.Background(), "k", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if v != "origin" || *calls != 1 {
		t.Errorf("value = %q calls = %d, want origin/1", v, *calls)
	}
}

func TestLocal_ExpiresAndEvicts(t *testing.T) {
	l := cache.NewLocal(2, 50*time.Millisecond)
	ctx := context.Background()

	l.Set(ctx, "a", "1", 0)
	if v, ok, _ := l.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v, want 1, true", v, ok)
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok, _ := l.Get(ctx, "a"); ok {
		t.Error("entry survived past its TTL")
	}
}
