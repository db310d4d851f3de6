package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectedClients tracks the number of live, identity-bound connections.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "social_ws_connected_clients",
		Help: "Number of websocket clients currently bound to a user identity.",
	})

	// EventsDelivered counts events handed to a live connection, by event name.
	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_ws_events_delivered_total",
		Help: "Events delivered to a live websocket connection.",
	}, []string{"event"})

	// EventsDropped counts events dropped because the target was offline or
	// its send buffer was full, by event name.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_ws_events_dropped_total",
		Help: "Events dropped because the target user had no live connection.",
	}, []string{"event"})

	// InboundEvents counts client events received, by event name.
	InboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_ws_inbound_events_total",
		Help: "Client events received on websocket connections.",
	}, []string{"event"})

	// HandlerErrors counts handler failures returned to clients, by event name.
	HandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_ws_handler_errors_total",
		Help: "Handler failures converted to error frames.",
	}, []string{"event"})
)
