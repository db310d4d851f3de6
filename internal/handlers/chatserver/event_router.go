package chatserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/events"
	"social-go/internal/metrics"
	"social-go/internal/services"
	"social-go/internal/websocket"
)

// EventRouter is the connection controller. It demultiplexes inbound frames
// to the domain services and owns the bind/unbind lifecycle of a connection.
//
// Identity fields inside payloads are never trusted: every operation runs as
// the connection's bound user, whatever the frame claims. Handler failures go
// back to the originating connection as an error frame and never touch the
// peer.
type EventRouter struct {
	hub         *websocket.Hub
	friendSvc   services.FriendService
	chatSvc     services.ChatService
	presenceSvc services.PresenceService
	authCfg     config.AuthConfig
	blacklist   auth.TokenBlacklist
}

// NewEventRouter creates a new EventRouter instance.
func NewEventRouter(
	hub *websocket.Hub,
	friendSvc services.FriendService,
	chatSvc services.ChatService,
	presenceSvc services.PresenceService,
	authCfg config.AuthConfig,
	blacklist auth.TokenBlacklist,
) *EventRouter {
	return &EventRouter{
		hub:         hub,
		friendSvc:   friendSvc,
		chatSvc:     chatSvc,
		presenceSvc: presenceSvc,
		authCfg:     authCfg,
		blacklist:   blacklist,
	}
}

var _ websocket.EventRouter = (*EventRouter)(nil)

// HandleEvent processes one inbound frame in the connection's read loop.
func (r *EventRouter) HandleEvent(ctx context.Context, client *websocket.Client, env *events.Envelope) {
	metrics.InboundEvents.WithLabelValues(env.Event).Inc()

	if env.Event == events.ClientBindIdentity {
		r.handleBind(ctx, client, env)
		return
	}
	if client.UserID == 0 {
		r.sendErrorStatus(client, env.Event, http.StatusUnauthorized, "identity not bound")
		return
	}

	var err error
	switch env.Event {
	case events.ClientSendRequest:
		var p events.SendRequestPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.friendSvc.SendRequest(ctx, client.UserID, p.To)
		}
	case events.ClientAcceptRequest:
		var p events.AcceptRequestPayload
		if err = unmarshalPayload(env, &p); err == nil {
			_, err = r.friendSvc.AcceptRequest(ctx, client.UserID, p.Requester)
		}
	case events.ClientRejectRequest:
		var p events.RejectRequestPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.friendSvc.RejectRequest(ctx, client.UserID, p.Requester)
		}
	case events.ClientCancelRequest:
		var p events.CancelRequestPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.friendSvc.CancelRequest(ctx, client.UserID, p.Target)
		}
	case events.ClientRemoveFriend:
		var p events.RemoveFriendPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.friendSvc.RemoveFriend(ctx, client.UserID, p.Target)
		}
	case events.ClientSendMessage:
		var p events.SendMessagePayload
		if err = unmarshalPayload(env, &p); err == nil {
			_, err = r.chatSvc.Send(ctx, client.UserID, services.SendMessageInput{
				RoomID:     p.RoomID,
				ReceiverID: p.ReceiverID,
				Content:    p.Content,
				ImageURL:   p.ImageURL,
			})
		}
	case events.ClientMarkRead:
		var p events.MarkReadPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.chatSvc.MarkRead(ctx, p.RoomID, client.UserID)
		}
	case events.ClientRecallMessage:
		var p events.RecallMessagePayload
		if err = unmarshalPayload(env, &p); err == nil {
			_, err = r.chatSvc.Recall(ctx, p.RoomID, p.MessageID, client.UserID)
		}
	case events.ClientTyping:
		var p events.TypingPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.chatSvc.Typing(ctx, p.RoomID, client.UserID)
		}
	case events.ClientStopTyping:
		var p events.TypingPayload
		if err = unmarshalPayload(env, &p); err == nil {
			err = r.chatSvc.StopTyping(ctx, p.RoomID, client.UserID)
		}
	default:
		r.sendErrorStatus(client, env.Event, http.StatusBadRequest, "unknown event: "+env.Event)
		return
	}

	if err != nil {
		r.sendError(client, env.Event, err)
	}
}

// handleBind validates the connection's token and binds its identity in the
// hub, replacing any previous connection of the same user.
func (r *EventRouter) handleBind(ctx context.Context, client *websocket.Client, env *events.Envelope) {
	if client.UserID != 0 {
		r.sendErrorStatus(client, env.Event, http.StatusConflict, "identity already bound")
		return
	}

	var p events.BindIdentityPayload
	if err := unmarshalPayload(env, &p); err != nil {
		r.sendError(client, env.Event, err)
		return
	}

	claims, err := auth.ValidateToken(ctx, p.AuthToken, r.authCfg.JWTSecretKey, r.blacklist)
	if err != nil {
		log.Printf("event router: rejecting bind on conn %s: %v", client.ConnID, err)
		r.sendErrorStatus(client, env.Event, http.StatusUnauthorized, "invalid token")
		return
	}

	// The token, not the payload, decides who this connection is.
	client.UserID = claims.UserID
	r.hub.Bind(claims.UserID, client)

	if err := r.presenceSvc.HandleBind(ctx, claims.UserID); err != nil {
		r.sendError(client, env.Event, err)
	}
}

// HandleDisconnect clears the hub binding for a closing connection. The
// compare-and-clear inside Unbind keeps a stale disconnect from marking a
// freshly reconnected user offline.
func (r *EventRouter) HandleDisconnect(ctx context.Context, client *websocket.Client) {
	userID, cleared := r.hub.Unbind(client)
	if !cleared {
		return
	}
	if err := r.presenceSvc.HandleUnbind(ctx, userID); err != nil {
		log.Printf("event router: presence unbind for user %d: %v", userID, err)
	}
}

func unmarshalPayload(env *events.Envelope, dst interface{}) error {
	if len(env.Payload) == 0 {
		return services.ErrInvalidPayload
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return services.ErrInvalidPayload
	}
	return nil
}

func (r *EventRouter) sendError(client *websocket.Client, event string, err error) {
	status := services.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		log.Printf("event router: %s failed for user %d: %v", event, client.UserID, err)
		message = "internal error"
	}
	r.sendErrorStatus(client, event, status, message)
}

func (r *EventRouter) sendErrorStatus(client *websocket.Client, event string, status int, message string) {
	metrics.HandlerErrors.WithLabelValues(event).Inc()
	client.SendEvent(events.ServerError, events.ErrorPayload{Status: status, Message: message})
}
