// Package notification provides the event hub that lets a host observe the
// audio scheduler without the scheduler ever raising.
package notification

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Handler receives published events.
type Handler func(Event)

// subscription represents a subscriber's subscription.
type subscription struct {
	id      string
	order   uint64
	handler Handler
}

// Hub manages event subscriptions and delivery.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	nextOrder     uint64
	sequenceNo    atomic.Uint64
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a handler and returns the subscription ID.
func (h *Hub) Subscribe(handler Handler) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	h.nextOrder++
	h.subscriptions[id] = &subscription{
		id:      id,
		order:   h.nextOrder,
		handler: handler,
	}
	return id
}

// Unsubscribe removes a subscription.
func (h *Hub) Unsubscribe(subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscriptions, subscriptionID)
}

// Publish stamps the event with the next sequence number and delivers it
// synchronously to every subscriber in subscription order. Events published
// from one goroutine arrive in order; concurrent publishers may interleave,
// in which case SequenceNo gives the publish order.
// A panicking handler is recovered and logged; it never reaches the publisher.
// Must not be called while holding a lock a handler might need.
// Publishing on a nil hub is a no-op.
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	e.SequenceNo = h.sequenceNo.Add(1)

	h.mu.RLock()
	// Copy subscriptions to avoid holding the lock during delivery
	subs := make([]*subscription, 0, len(h.subscriptions))
	for _, sub := range h.subscriptions {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].order < subs[j].order })

	for _, sub := range subs {
		deliver(sub, e)
	}
}

func deliver(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Warn().Msgf("notification: subscriber panicked: id=%s event=%s panic=%v", sub.id, e.Type, r)
		}
	}()
	sub.handler(e)
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// Close removes all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = make(map[string]*subscription)
}
