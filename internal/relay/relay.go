// Package relay delivers committed like events to the message broker.
//
// Enqueue must be called only after the owning transaction has committed: a
// published event represents durable state. Delivery happens on a worker
// goroutine with bounded retry; exhausting the retry budget drops the event
// and logs it with full context. The channel is explicitly at-most-once,
// best-effort — there is no local durable queue.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Publisher sends one message to the broker topic.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Options bounds delivery attempts and buffering.
type Options struct {
	Attempts       int
	Backoff        time.Duration
	PublishTimeout time.Duration
	Buffer         int
}

// Relay buffers committed events and delivers them asynchronously so the
// request path never blocks on a broker round-trip.
type Relay struct {
	pub    Publisher
	opts   Options
	logger *slog.Logger

	events chan LikeEvent
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a relay and starts its delivery worker.
func New(pub Publisher, opts Options, logger *slog.Logger) *Relay {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}

	r := &Relay{
		pub:    pub,
		opts:   opts,
		logger: logger.With("system", "relay"),
		events: make(chan LikeEvent, opts.Buffer),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Enqueue hands a committed event to the relay. It never blocks: when the
// buffer is full the event is dropped and logged, consistent with the
// channel's best-effort contract.
func (r *Relay) Enqueue(ev LikeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logEventDrop(ev, errors.New("relay closed"))
		return
	}

	select {
	case r.events <- ev:
	default:
		r.logEventDrop(ev, errors.New("relay buffer full"))
	}
}

// Close stops accepting events and waits for buffered deliveries to finish.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Relay) run() {
	defer r.wg.Done()
	for ev := range r.events {
		r.deliver(ev)
	}
}

func (r *Relay) deliver(ev LikeEvent) {
	value, err := json.Marshal(ev)
	if err != nil {
		// Not transient; retrying cannot help.
		r.logEventDrop(ev, err)
		return
	}
	key := []byte(strconv.FormatInt(ev.ImageID, 10))

	var lastErr error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(r.opts.Backoff)
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.opts.PublishTimeout)
		lastErr = r.pub.Publish(ctx, key, value)
		cancel()

		if lastErr == nil {
			return
		}
	}

	r.logEventDrop(ev, lastErr)
}

func (r *Relay) logEventDrop(ev LikeEvent, err error) {
	r.logger.Error(
		"like event delivery failed, dropping event",
		"image_id", ev.ImageID,
		"user_id", ev.UserID,
		"kind", ev.Kind,
		"error", err,
	)
}
