package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SPA is served from a different origin; the bearer token is the
	// access control, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection for an authenticated user.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	email string
	name  string
	rooms map[string]bool
}

// Serve upgrades the HTTP request and runs the connection's pumps. The
// caller has already authenticated the user.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, email, name string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, 32),
		email: email,
		name:  name,
		rooms: make(map[string]bool),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// trySend queues a message, dropping it if the client's buffer is full.
// A slow reader must not stall the hub.
func (c *Client) trySend(message []byte) {
	select {
	case c.send <- message:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).Debug("websocket read error")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		c.hub.inbound <- inboundEvent{client: c, event: event}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
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
