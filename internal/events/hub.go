// Package events fans content changes out to live subscribers, such as the
// admin UI listening on /api/events.
package events

import (
	"sync"
	"time"
)

// Type is what happened to a document.
type Type string

const (
	Saved   Type = "saved"
	Deleted Type = "deleted"
)

// Event describes one successful mutation.
type Event struct {
	Type Type   `json:"type"`
	Kind string `json:"kind"` // section, project, page, structure, availability, tags
	ID   string `json:"id,omitempty"`
	At   int64  `json:"at"`
}

// subscriberBuffer is how many events a slow subscriber may fall behind
// before events to it are dropped.
const subscriberBuffer = 32

// Hub broadcasts events to subscribers. The zero value is not usable; use NewHub.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
	now    func() time.Time
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
		now:  time.Now,
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes
// it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// Publish delivers e to every subscriber without blocking. Subscribers
// whose buffer is full miss the event.
func (h *Hub) Publish(e Event) {
	if e.At == 0 {
		e.At = h.now().Unix()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
