package events

import "encoding/json"

// Client-originated event names, one per socket operation.
const (
	ClientBindIdentity  = "bind-identity"
	ClientSendRequest   = "send-friend-request"
	ClientAcceptRequest = "accept-friend-request"
	ClientRejectRequest = "reject-friend-request"
	ClientCancelRequest = "cancel-friend-request"
	ClientRemoveFriend  = "remove-friend"
	ClientSendMessage   = "send-message"
	ClientMarkRead      = "mark-messages-read"
	ClientRecallMessage = "recall-message"
	ClientTyping        = "typing"
	ClientStopTyping    = "stop-typing"
)

// Server-originated event names, mirroring the client events.
const (
	ServerRequestReceived  = "server-request-received"
	ServerRequestAccepted  = "server-request-accepted"
	ServerRequestRejected  = "server-request-rejected"
	ServerRequestCancelled = "server-request-cancelled"
	ServerFriendRemoved    = "server-friend-removed"
	ServerMessage          = "server-message"
	ServerMessagesRead     = "server-messages-read"
	ServerMessageRecalled  = "server-message-recalled"
	ServerTyping           = "server-typing"
	ServerStopTyping       = "server-stop-typing"
	ServerPresence         = "server-presence"
	ServerError            = "error"
)

// Envelope is the wire frame exchanged on a connection: an event name plus an
// event-specific JSON payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an Envelope. Marshal errors are returned
// so callers can decide whether to drop or fail.
func NewEnvelope(event string, payload interface{}) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Payload: raw}, nil
}

// ErrorPayload is delivered back to the originating connection only, never
// broadcast.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// DeliverEnvelope is the cross-process delivery instruction carried on the
// outgoing Kafka topic: deliver Payload as Event to UserID if that user is
// connected to the consuming instance.
type DeliverEnvelope struct {
	UserID  uint            `json:"userId"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}
