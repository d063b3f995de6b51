package eventbus

import (
	"sync"
	"time"

	"github.com/ovms-community/ovms-bridge/core/entity"
)

// Update is one decoded state change flowing from the MQTT handler to the
// entity publishers.
type Update struct {
	VehicleID string
	Entity    entity.Entity
	Topic     string
	Payload   string
	Retained  bool
	At        time.Time
}

// Bus is a publish/subscribe fan-out for state updates. Delivery is
// non-blocking; slow subscribers lose events rather than stalling the MQTT
// handler.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Update
	closed bool
}

// New creates a Bus.
func New() *Bus { return &Bus{} }

// Publish sends the update to all subscribers.
func (b *Bus) Publish(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Update {
	ch := make(chan Update, 64)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
