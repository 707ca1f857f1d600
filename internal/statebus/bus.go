// Package statebus broadcasts the latest value of a lifecycle signal to any
// number of observers. Only the current value matters to consumers, so
// delivery is last-value-wins: a slow subscriber sees the newest value, not
// every intermediate one. New subscribers immediately receive the latest
// value when one exists.
package statebus

import "sync"

// Bus is a latest-value publish/subscribe channel. The zero value is not
// usable; call New.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	latest T
	has    bool
}

// New constructs an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]chan T)}
}

// Publish replaces the current value and offers it to every subscriber.
// Publish never blocks: if a subscriber has not drained the previous value,
// it is dropped and replaced.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = v
	b.has = true
	for _, ch := range b.subs {
		offer(ch, v)
	}
}

// offer performs a non-blocking last-value-wins send on a 1-buffered channel.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Subscribe registers an observer. The returned channel yields the latest
// value at subscription time (if any) and every value published afterwards,
// collapsed to the newest under backpressure. The cancel func must be called
// to release the subscription; the channel is closed by cancel.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.has {
		ch <- b.latest
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Latest returns the current value, if one has been published.
func (b *Bus[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}
