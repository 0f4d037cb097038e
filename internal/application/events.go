package application

import (
	"sync"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/oklog/ulid/v2"
)

type subscriber struct {
	id int
	fn func(domain.Event)
}

// EventBus delivers every published event synchronously to all subscribers,
// in subscription order.
type EventBus struct {
	clock ports.Clock

	mu          sync.RWMutex
	nextID      int
	subscribers []subscriber
}

var _ ports.EventPublisher = (*EventBus)(nil)

func NewEventBus(clock ports.Clock) *EventBus {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &EventBus{clock: clock}
}

// Subscribe registers fn and returns a func that removes it again.
func (b *EventBus) Subscribe(fn func(domain.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			for i := range b.subscribers {
				if b.subscribers[i].id == id {
					b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *EventBus) Publish(event domain.Event) {
	if event.At.IsZero() {
		event.At = b.clock.Now()
	}
	if event.ID == "" {
		event.ID = ulid.MustNew(ulid.Timestamp(event.At), ulid.DefaultEntropy()).String()
	}

	b.mu.RLock()
	subscribers := make([]subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subscribers {
		sub.fn(event)
	}
}
