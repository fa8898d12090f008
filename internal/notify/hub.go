// Package notify delivers in-process change notifications between the stores.
package notify

import (
	"sort"
	"sync"
)

// Topic names a kind of state change
type Topic string

const (
	TopicSession    Topic = "session"
	TopicOnboarding Topic = "onboarding"
	TopicWatchlist  Topic = "watchlist"
	TopicArticles   Topic = "articles"
)

// Event is a single notification. Payload is a snapshot of the new state and
// its type depends on the topic.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler receives events for a topic it subscribed to
type Handler func(Event)

// Hub fans events out to subscribers. Handlers run synchronously on the
// publisher's goroutine, after the hub lock has been released, in
// subscription order.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers fn for topic and returns a function that removes it
func (h *Hub) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]Handler)
	}
	h.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[topic], id)
		})
	}
}

// Publish delivers payload to every current subscriber of topic.
// A nil hub drops the event.
func (h *Hub) Publish(topic Topic, payload any) {
	if h == nil {
		return
	}

	h.mu.RLock()
	ids := make([]int, 0, len(h.subs[topic]))
	for id := range h.subs[topic] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, h.subs[topic][id])
	}
	h.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, fn := range handlers {
		fn(ev)
	}
}
