// Package eventbus fans events out to in-process subscribers.
package eventbus

import "sync"

// DefaultBuffer is the channel capacity of each subscriber.
const DefaultBuffer = 8

// Bus is a type-safe publish/subscribe bus for events of type T.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Bus[T any] struct {
	mu     sync.RWMutex
	buffer int
	subs   []chan T
	closed bool
}

// New creates a Bus whose subscribers buffer up to buffer events.
func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{buffer: buffer}
}

// Publish delivers e to every subscriber with room in its buffer and returns
// the number of deliveries.
func (b *Bus[T]) Publish(e T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	n := 0
	for _, ch := range b.subs {
		select {
		case ch <- e:
			n++
		default:
		}
	}
	return n
}

// Subscribe registers a subscriber. After Close it returns a closed channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes all subscriber channels. Later publishes are dropped.
func (b *Bus[T]) Close() {
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
