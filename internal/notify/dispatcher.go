// Package notify delivers appointment notifications off the request path.
// The Dispatcher queues them and a single worker hands each one to every sink.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"appointment-service/internal/models"
	"appointment-service/pkg/sl"
)

const (
	defaultQueueSize = 256
	deliverTimeout   = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notification dispatcher is closed")
)

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n models.Notification) error
}

type Dispatcher struct {
	log   *slog.Logger
	sinks []Sink
	queue chan models.Notification
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(log *slog.Logger, queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		log:   log.With(slog.String("component", "notify/dispatcher")),
		sinks: sinks,
		queue: make(chan models.Notification, queueSize),
		done:  make(chan struct{}),
	}
	go d.run()

	return d
}

// Notify enqueues n without blocking. A full queue drops n and reports ErrQueueFull.
func (d *Dispatcher) Notify(_ context.Context, n models.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for n := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
			err := s.Deliver(ctx, n)
			cancel()

			if err != nil {
				d.log.Error("notification delivery failed",
					slog.String("sink", s.Name()),
					slog.String("notification_id", n.ID),
					slog.String("kind", string(n.Kind)),
					sl.Err(err),
				)
			}
		}
	}
}

// Close stops accepting notifications and waits for the queued ones to be
// delivered or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
