package relay_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kektor/gallery-images/internal/relay"
)

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	values   [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, _, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	p.values = append(p.values, value)
	return nil
}

func (p *fakePublisher) stats() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, len(p.values)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() relay.Options {
	return relay.Options{
		Attempts:       3,
		Backoff:        time.Millisecond,
		PublishTimeout: time.Second,
		Buffer:         8,
	}
}

func testEvent() relay.LikeEvent {
	return relay.LikeEvent{
		Kind:       relay.EventLike,
		ImageID:    1,
		OwnerID:    2,
		UserID:     3,
		Username:   "alice",
		LikesCount: 4,
		At:         time.Now().UTC(),
	}
}

func TestRelay_DeliversOnFirstAttempt(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.New(pub, testOptions(), discardLogger())

	r.Enqueue(testEvent())
	r.Close()

	calls, delivered := pub.stats()
	if calls != 1 || delivered != 1 {
		t.Errorf("calls = %d delivered = %d, want 1/1", calls, delivered)
	}
}

func TestRelay_RetriesTransientFailures(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	r := relay.New(pub, testOptions(), discardLogger())

	r.Enqueue(testEvent())
	r.Close()

	calls, delivered := pub.stats()
	if calls != 3 || delivered != 1 {
		t.Errorf("calls = %d delivered = %d, want 3/1", calls, delivered)
	}
}

func TestRelay_DropsAfterExhaustedAttempts(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	r := relay.New(pub, testOptions(), discardLogger())

	r.Enqueue(testEvent())
	r.Close()

	calls, delivered := pub.stats()
	if calls != 3 {
		t.Errorf("calls = %d, want exactly 3 attempts", calls)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0 after exhaustion", delivered)
	}
}

func TestRelay_EnqueueAfterCloseDrops(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.New(pub, testOptions(), discardLogger())
	r.Close()

	// Must neither panic nor deliver.
	r.Enqueue(testEvent())

	calls, _ := pub.stats()
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after close", calls)
	}
}

func TestRelay_DrainsBufferOnClose(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.New(pub, testOptions(), discardLogger())

	for range 5 {
		r.Enqueue(testEvent())
	}
	r.Close()

	_, delivered := pub.stats()
	if delivered != 5 {
		t.Errorf("delivered = %d, want 5", delivered)
	}
}
