package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mfenderov/sentiscore/internal/events"
)

// Sink receives score notifications. *Notifier implements it.
type Sink interface {
	Notify(ctx context.Context, keyword string, score float64, at time.Time) error
}

// Dispatcher delivers ScoreComputedEvents to a Sink from a background
// goroutine so callers never wait on mail delivery.
type Dispatcher struct {
	sink      Sink
	timeout   time.Duration
	onFailure func(events.NotificationFailedEvent)

	mu     sync.RWMutex
	closed bool
	queue  chan events.ScoreComputedEvent
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with a queue of queueSize events.
// onFailure may be nil.
func NewDispatcher(sink Sink, queueSize int, timeout time.Duration, onFailure func(events.NotificationFailedEvent)) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	d := &Dispatcher{
		sink:      sink,
		timeout:   timeout,
		onFailure: onFailure,
		queue:     make(chan events.ScoreComputedEvent, queueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues evt without blocking. It returns false when the queue is
// full or the dispatcher is closed; the event is dropped in that case.
func (d *Dispatcher) Publish(evt events.ScoreComputedEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- evt:
		return true
	default:
		slog.Warn("notification queue full, dropping event", "id", evt.ID, "keyword", evt.Keyword)
		return false
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		if err := d.deliver(evt); err != nil {
			slog.Warn("notification failed",
				"kind", "NotificationError",
				"id", evt.ID,
				"keyword", evt.Keyword,
				"error", err)
			if d.onFailure != nil {
				d.onFailure(events.NotificationFailedEvent{
					ID:        evt.ID,
					Keyword:   evt.Keyword,
					Err:       err,
					Timestamp: time.Now(),
				})
			}
			continue
		}
		slog.Info("notification delivered", "id", evt.ID, "keyword", evt.Keyword)
	}
}

func (d *Dispatcher) deliver(evt events.ScoreComputedEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.sink.Notify(ctx, evt.Keyword, evt.Score, evt.Timestamp)
}
