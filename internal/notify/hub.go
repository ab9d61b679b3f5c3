// Package notify fans appointment events out to every connected viewer.
// Delivery is at-most-once: a viewer that is slow or disconnected misses
// events and is expected to re-fetch state.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Event kinds pushed to viewers.
const (
	KindAppointmentCreated       = "appointment_created"
	KindAppointmentStatusChanged = "appointment_status_changed"
)

type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// Publisher accepts events for delivery. Publish never blocks on receivers.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Recorder observes hub activity. Implemented by the metrics package.
type Recorder interface {
	EventPublished(kind string)
	EventDropped(kind string)
	SubscribersChanged(n int)
}

type nopRecorder struct{}

func (nopRecorder) EventPublished(string)  {}
func (nopRecorder) EventDropped(string)    {}
func (nopRecorder) SubscribersChanged(int) {}

// Hub broadcasts every event to every subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	buffer int
	rec    Recorder
	log    zerolog.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer events each.
// rec may be nil.
func NewHub(buffer int, rec Recorder, log zerolog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Hub{
		subs:   make(map[uint64]chan Event),
		buffer: buffer,
		rec:    rec,
		log:    log,
	}
}

// Subscribe registers a viewer. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	n := len(h.subs)
	h.mu.Unlock()
	h.rec.SubscribersChanged(n)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			n := len(h.subs)
			close(ch)
			h.mu.Unlock()
			h.rec.SubscribersChanged(n)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of connected viewers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish hands ev to every subscriber that has room for it.
func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.rec.EventPublished(ev.Kind)
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.rec.EventDropped(ev.Kind)
			h.log.Warn().Uint64("subscriber", id).Str("kind", ev.Kind).Msg("subscriber buffer full, event dropped")
		}
	}
}

// Multi publishes to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) {
	for _, p := range m {
		p.Publish(ctx, ev)
	}
}
