package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/metrics"
)

type Event struct {
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Metadata any
}

// Sink consumes committed events. Failures are logged and never reach the
// request that produced the event.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	sinks   []Sink
	queue   chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, m *metrics.Metrics, size, workers int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		log:     log,
		metrics: m,
		sinks:   sinks,
		queue:   make(chan Event, size),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}

	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		for _, s := range d.sinks {
			if err := s.Handle(context.Background(), ev); err != nil {
				d.log.Warn("audit sink failed",
					slog.String("sink", s.Name()),
					slog.String("action", ev.Action),
					slog.Any("error", err),
				)
			}
		}
	}
}

// Dispatch never blocks: a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	d.metrics.DomainEvent(ev.Action)

	select {
	case d.queue <- ev:
	default:
		d.metrics.AuditDropped()
		d.log.Warn("audit queue full, dropping event", slog.String("action", ev.Action))
	}
}

// Close stops intake and waits for queued events to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publisher is what use cases depend on.
type Publisher interface {
	Dispatch(ev Event)
}

var _ Publisher = (*Dispatcher)(nil)
