package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 64

type subscriber struct {
	id string
	ch chan Event
}

// Bus fans events out to subscribers. Publish never blocks: an event that
// does not fit a subscriber's buffer is dropped for that subscriber only.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber // Protected by mu
	closed bool                   // Protected by mu

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewBus creates an event bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[string]*subscriber),
		logger: logger,
	}
}

// WithMetrics adds metrics tracking to the bus
func (b *Bus) WithMetrics(metrics *monitoring.Metrics) *Bus {
	b.metrics = metrics
	return b
}

// Subscribe returns a subscriber ID, its event channel and a cancel function.
// The channel is closed on cancel or when the bus closes.
func (b *Bus) Subscribe(buffer int) (string, <-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &subscriber{id: uuid.NewString(), ch: make(chan Event, buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.id, sub.ch, func() {}
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[sub.id]; ok {
				delete(b.subs, sub.id)
				close(sub.ch)
			}
			b.mu.Unlock()
		})
	}
	return sub.id, sub.ch, cancel
}

// Publish delivers e to every subscriber with room for it
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			b.metrics.IncEventsDropped()
			b.logger.Warn("subscriber full, dropping event",
				zap.String("subscriber", sub.id),
				zap.String("kind", string(e.Kind)),
			)
		}
	}
}

// Listen runs fn for every event until ctx is done. A panic in fn is
// recovered and logged; delivery continues with the next event.
func (b *Bus) Listen(ctx context.Context, buffer int, fn func(Event)) {
	_, ch, cancel := b.Subscribe(buffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			b.deliver(fn, e)
		}
	}
}

func (b *Bus) deliver(fn func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("kind", string(e.Kind)),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn(e)
}

// Subscribers returns the number of active subscribers
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
