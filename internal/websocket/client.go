package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"social-go/internal/config"
	"social-go/internal/events"
)

// EventRouter demultiplexes inbound events for a connection. Implemented by
// the chat server's connection controller.
type EventRouter interface {
	// HandleEvent processes one inbound frame. Failures are reported back to
	// the originating connection by the router itself; they never terminate
	// the connection.
	HandleEvent(ctx context.Context, client *Client, env *events.Envelope)
	// HandleDisconnect runs when the read loop ends, before the connection is
	// torn down.
	HandleDisconnect(ctx context.Context, client *Client)
}

// Client is the middleman between one websocket connection and the hub.
// UserID stays zero until the connection completes bind-identity.
type Client struct {
	// ConnID identifies this physical connection; it is what makes the hub's
	// compare-and-clear meaningful when one user reconnects quickly.
	ConnID string
	UserID uint

	hub    *Hub
	conn   *websocket.Conn
	router EventRouter

	send     chan []byte
	closeMu  sync.Mutex
	closed   bool
	wsConfig config.WebSocketConfig
}

// NewClient wraps an upgraded connection. The caller starts the pumps.
func NewClient(connID string, hub *Hub, conn *websocket.Conn, router EventRouter, wsCfg config.WebSocketConfig) *Client {
	bufSize := wsCfg.SendBufferSize
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Client{
		ConnID:   connID,
		hub:      hub,
		conn:     conn,
		router:   router,
		send:     make(chan []byte, bufSize),
		wsConfig: wsCfg,
	}
}

// Enqueue queues an outbound frame without blocking. Returns false when the
// connection is closed or its buffer is full; the frame is dropped either way.
func (c *Client) Enqueue(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// SendEvent marshals and queues one event frame for this connection.
func (c *Client) SendEvent(event string, payload interface{}) bool {
	env, err := events.NewEnvelope(event, payload)
	if err != nil {
		log.Printf("websocket: marshal %s for conn %s: %v", event, c.ConnID, err)
		return false
	}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("websocket: marshal envelope %s for conn %s: %v", event, c.ConnID, err)
		return false
	}
	return c.Enqueue(raw)
}

// closeSend closes the send channel exactly once, which ends the write pump.
func (c *Client) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump pumps frames from the websocket connection into the event router.
// It runs in a per-connection goroutine; events from one connection are
// processed strictly in arrival order.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.router.HandleDisconnect(ctx, c)
		c.closeSend()
		c.conn.Close()
	}()

	pongWait := time.Duration(c.wsConfig.PongWaitSeconds) * time.Second
	c.conn.SetReadLimit(int64(c.wsConfig.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("websocket: read error (conn %s, user %d): %v", c.ConnID, c.UserID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env events.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("websocket: bad frame from conn %s: %v", c.ConnID, err)
			c.SendEvent(events.ServerError, events.ErrorPayload{Status: 400, Message: "malformed event frame"})
			continue
		}

		c.router.HandleEvent(ctx, c, &env)
	}
}

// WritePump pumps queued frames to the websocket connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	writeWait := time.Duration(c.wsConfig.WriteWaitSeconds) * time.Second
	ticker := time.NewTicker(time.Duration(c.wsConfig.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
