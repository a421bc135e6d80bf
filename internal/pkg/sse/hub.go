package sse

import (
	"sync"
)

// subscriberBuffer is how many snapshots a slow subscriber may lag behind
// before older ones are dropped in favor of the newest.
const subscriberBuffer = 8

// Hub fans state snapshots out to subscribers.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
}

// NewHub creates a new Hub instance
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subscribers: make(map[chan T]struct{}),
	}
}

// Subscribe registers a new subscriber and returns the channel and a cleanup function
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	h.subscribers[ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends v to every subscriber without blocking. A full subscriber
// loses its oldest pending snapshot so the newest always gets through.
func (h *Hub[T]) Publish(v T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- v:
			continue
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
}
