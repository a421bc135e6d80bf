package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub[int]()
	a, cleanupA := h.Subscribe()
	b, cleanupB := h.Subscribe()
	defer cleanupA()
	defer cleanupB()

	h.Publish(7)

	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
}

func TestHub_CleanupClosesChannel(t *testing.T) {
	h := NewHub[string]()
	ch, cleanup := h.Subscribe()

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)

	// Publishing with nobody listening must not block or panic
	h.Publish("ignored")
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	h := NewHub[int]()
	ch, cleanup := h.Subscribe()
	defer cleanup()

	for i := 1; i <= subscriberBuffer+5; i++ {
		h.Publish(i)
	}

	var last int
	for i := 0; i < subscriberBuffer; i++ {
		last = <-ch
	}
	assert.Equal(t, subscriberBuffer+5, last)
}
