package websocket

import (
	"encoding/json"
	"log"

	"social-go/internal/events"
	"social-go/internal/metrics"
)

// EventDispatcher delivers one event to one user, best-effort. Implementations
// must drop silently when the user has no live connection; there is no
// buffering, retry or dead-letter for offline peers.
type EventDispatcher interface {
	Deliver(userID uint, event string, payload interface{})
}

// Dispatcher resolves users through the hub and writes to live connections
// only. Callers treat every Deliver as fire-and-forget.
type Dispatcher struct {
	hub *Hub
}

// NewDispatcher creates a Dispatcher over the given hub.
func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

// Deliver sends the event to userID's live connection, if any. Offline users
// and full send buffers both count as drops.
func (d *Dispatcher) Deliver(userID uint, event string, payload interface{}) {
	client := d.hub.Resolve(userID)
	if client == nil {
		metrics.EventsDropped.WithLabelValues(event).Inc()
		return
	}
	if !client.SendEvent(event, payload) {
		metrics.EventsDropped.WithLabelValues(event).Inc()
		log.Printf("dispatcher: dropping %s for user %d, connection %s not writable", event, userID, client.ConnID)
		return
	}
	metrics.EventsDelivered.WithLabelValues(event).Inc()
}

// DeliverRaw sends an already-marshaled payload, used by the Kafka outgoing
// consumer where the payload arrives as raw JSON.
func (d *Dispatcher) DeliverRaw(userID uint, event string, payload json.RawMessage) {
	d.Deliver(userID, event, payload)
}

var _ EventDispatcher = (*Dispatcher)(nil)

// DeliverEnvelope applies one cross-process delivery instruction.
func (d *Dispatcher) DeliverEnvelope(env *events.DeliverEnvelope) {
	d.DeliverRaw(env.UserID, env.Event, env.Payload)
}
