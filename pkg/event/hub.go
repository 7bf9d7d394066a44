package event

import (
	"sync"
)

// ReplayAll makes a hub deliver its entire history to late subscribers.
const ReplayAll = -1

// subscriberBuffer bounds each subscription channel beyond the replayed
// history. A subscriber that lets it fill up is evicted on the next publish.
const subscriberBuffer = 64

// Hub is a multi-subscriber broadcast channel. Publishes fan out to every
// live subscription in publish order; the replay depth controls how much
// history a late subscriber receives first. Unsubscribe tears the
// subscription down deterministically.
type Hub[T any] struct {
	mu      sync.Mutex
	subs    map[int]chan T
	history []T
	replay  int
	nextID  int
	closed  bool
}

// NewHub creates a hub keeping the last replay values for late subscribers.
// Use 0 for no history, ReplayAll for everything.
func NewHub[T any](replay int) *Hub[T] {
	return &Hub[T]{
		subs:   make(map[int]chan T),
		replay: replay,
	}
}

// Publish delivers v to every subscriber and records it per the replay
// depth. Publishing on a closed hub is a no-op. A subscriber whose buffer
// is full is evicted, the slow-consumer policy message brokers apply: it
// keeps the hub from ever blocking and keeps ordering intact for everyone
// who drains.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.replay != 0 {
		h.history = append(h.history, v)
		if h.replay > 0 && len(h.history) > h.replay {
			h.history = h.history[len(h.history)-h.replay:]
		}
	}
	for id, ch := range h.subs {
		select {
		case ch <- v:
		default:
			delete(h.subs, id)
			close(ch)
		}
	}
}

// Subscribe registers a new subscriber. Replayed history is queued on the
// returned channel before any newer publish. The cancel function removes
// the subscription and closes the channel; calling it twice is safe.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()

	ch := make(chan T, subscriberBuffer+len(h.history))
	for _, v := range h.history {
		ch <- v
	}

	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close terminates the hub: every subscription channel is closed and
// further publishes are dropped. History stays available to late
// subscribers, who receive it and then see the channel close.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
