package broadcast

import (
	"sync"

	"github.com/newswire/backend/internal/models"
)

// subscriberBuffer bounds the per-subscriber queue. A subscriber that falls
// this far behind starts losing events; delivery is fire-and-forget.
const subscriberBuffer = 16

// Publisher is the side of the hub the mutation handlers see.
type Publisher interface {
	Publish(event models.Event)
}

// Subscriber receives every event published while it is registered. Events
// published before Subscribe or after Unsubscribe are permanently missed.
type Subscriber struct {
	ch chan models.Event
}

// Events returns the channel the hub delivers on. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan models.Event {
	return s.ch
}

// Hub is a single-process publish/subscribe registry. Add, remove and publish
// are mutually exclusive so an event is never delivered to a half-registered
// subscriber.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber and returns its handle.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan models.Event, subscriberBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Calling it twice
// is safe.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.ch)
}

// Publish delivers the event to every currently-registered subscriber. The
// send never blocks: a subscriber whose buffer is full drops the event rather
// than stalling the publisher or the other subscribers. Within one subscriber
// events arrive in publish order.
func (h *Hub) Publish(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of currently-registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
