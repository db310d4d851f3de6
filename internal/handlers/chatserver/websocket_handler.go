package chatserver

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"

	"social-go/internal/config"
	"social-go/internal/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are enforced by the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and starts its
// pumps. The connection carries no identity until it sends bind-identity.
func ServeWS(hub *websocket.Hub, router *EventRouter, wsCfg config.WebSocketConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket handler: upgrade failed: %v", err)
			return
		}

		connID := uuid.NewString()
		client := websocket.NewClient(connID, hub, conn, router, wsCfg)

		// The pumps outlive the HTTP handler, so they get their own context.
		go client.WritePump()
		go client.ReadPump(context.Background())
	}
}
