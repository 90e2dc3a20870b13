package hub

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Wire event kinds pushed to subscribers.
const (
	EventStatus   = "status"
	EventQR       = "qr"
	EventMessage  = "message"
	EventContacts = "contacts"
	EventChats    = "chats"
)

// RequestData is the only subscriber-to-server event: an explicit pull of
// the contact/chat snapshots.
const RequestData = "request-data"

// subscriberBuffer bounds the per-subscriber outbound queue. A subscriber
// that falls this far behind starts losing events; it can recover with a
// request-data pull.
const subscriberBuffer = 64

// Event is one realtime event on the wire.
type Event struct {
	Kind string `json:"event"`
	Data any    `json:"data"`
}

// Subscriber is an attached realtime client. It holds no session state:
// everything a late joiner needs is replayed from the state store at
// attach time.
type Subscriber struct {
	ID     string
	Events chan Event
	Done   chan struct{}
}

// Hub fans events out to all attached subscribers. Delivery is
// fire-and-forget: a slow subscriber's buffer fills and drops, it never
// stalls the emitter or other subscribers. Per-subscriber ordering is
// preserved by the single FIFO channel.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	logger *zap.Logger
}

// New creates an empty hub.
func New(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Attach registers a new subscriber.
func (h *Hub) Attach() *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		Events: make(chan Event, subscriberBuffer),
		Done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Info("subscriber attached", zap.String("id", sub.ID), zap.Int("count", count))
	return sub
}

// Detach deregisters a subscriber. Undelivered events are discarded.
func (h *Hub) Detach(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
		close(sub.Done)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if ok {
		h.logger.Info("subscriber detached", zap.String("id", sub.ID), zap.Int("count", count))
	}
}

// Broadcast pushes an event to every attached subscriber without blocking.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		h.push(sub, ev)
	}
}

// Send pushes an event to a single subscriber without blocking.
func (h *Hub) Send(sub *Subscriber, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.subs[sub]; ok {
		h.push(sub, ev)
	}
}

func (h *Hub) push(sub *Subscriber, ev Event) {
	select {
	case sub.Events <- ev:
	default:
		h.logger.Warn("subscriber buffer full, dropping event",
			zap.String("id", sub.ID), zap.String("kind", ev.Kind))
	}
}

// Count returns the number of attached subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close detaches every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.Done)
		delete(h.subs, sub)
	}
}
