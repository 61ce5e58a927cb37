// Package bus implements the in-memory publish/subscribe channel that fans
// catalog mutations and Q&A traffic out to connected sessions. Delivery is
// best-effort and at-most-once: nothing is persisted, late subscribers see
// no replay, and events for slow or gone subscribers are dropped rather
// than blocking the publisher.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"shop-service/internal/util"
)

// Event is a single typed message delivered to subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// sendBuffer bounds how far a subscriber may lag before events are dropped.
const sendBuffer = 16

// Subscription is one session's handle on the hub. Events arrive on the
// channel returned by Events in publish order per publisher.
type Subscription struct {
	id string
	ch chan Event
}

// ID returns the session identity this subscription is registered under.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the channel events are delivered on. It is closed by
// Unsubscribe.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Hub routes events to subscribed sessions, named groups and individual
// sessions. It is injectable with an explicit subscribe/unsubscribe
// lifecycle tied to connection lifetime.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Subscription
	groups   map[string]map[string]*Subscription
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Subscription),
		groups:   make(map[string]map[string]*Subscription),
		logger:   util.GetLogger(),
	}
}

// Subscribe registers a session and returns its subscription. A second
// subscribe under the same id replaces the first.
func (h *Hub) Subscribe(id string) *Subscription {
	sub := &Subscription{id: id, ch: make(chan Event, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.sessions[id]; ok {
		close(old.ch)
		h.removeFromGroupsLocked(id)
	}
	h.sessions[id] = sub
	return sub
}

// Unsubscribe removes a session, leaves its groups and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.sessions[id]
	if !ok {
		return
	}
	delete(h.sessions, id)
	h.removeFromGroupsLocked(id)
	close(sub.ch)
}

// Join adds a subscribed session to a named group.
func (h *Hub) Join(id, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.sessions[id]
	if !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Subscription)
	}
	h.groups[group][id] = sub
}

// Broadcast delivers an event to every currently subscribed session.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.sessions {
		h.deliver(sub, event)
	}
}

// Publish delivers an event to every member of a named group.
func (h *Hub) Publish(group string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.groups[group] {
		h.deliver(sub, event)
	}
}

// Send delivers an event to a single session by identity. Returns false if
// the session is not subscribed.
func (h *Hub) Send(id string, event Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.sessions[id]
	if !ok {
		return false
	}
	h.deliver(sub, event)
	return true
}

// deliver is a non-blocking send; a full buffer means the subscriber is too
// slow and the event is dropped. Called with h.mu held, so the channel
// cannot be closed concurrently.
func (h *Hub) deliver(sub *Subscription, event Event) {
	select {
	case sub.ch <- event:
	default:
		util.BroadcastDroppedTotal.Inc()
		h.logger.Warn("Dropping event for slow subscriber",
			zap.String("session_id", sub.id),
			zap.String("event_type", event.Type))
	}
}

func (h *Hub) removeFromGroupsLocked(id string) {
	for group, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}
