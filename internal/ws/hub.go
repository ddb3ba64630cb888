// Package ws implements the live chat and presence channel. One long-lived
// connection is established per logged-in client; chat rooms are scoped to
// claim IDs, mirroring the one-conversation-per-accepted-claim rule.
package ws

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// Hub owns all connected clients, the per-claim rooms, and the presence
// table. All map access happens on the Run goroutine.
type Hub struct {
	db  *sql.DB
	log *logrus.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	online  map[string]int
}

type inboundEvent struct {
	client *Client
	event  Event
}

// NewHub creates a hub. Call Run to start it.
func NewHub(db *sql.DB, log *logrus.Logger) *Hub {
	return &Hub{
		db:         db,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, 64),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		online:     make(map[string]int),
	}
}

// Run processes hub events until the context is cancelled. Cancellation is
// the normal way to stop the hub, so it returns nil rather than the context
// error.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			return nil
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			h.handleEvent(in.client, in.event)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = true
	h.online[c.email]++
	if h.online[c.email] == 1 {
		h.broadcast(mustEvent(EventUserStatus, StatusPayload{Email: c.email, Online: true}))
	}
	h.log.WithField("email", c.email).Debug("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	for claimID := range c.rooms {
		h.leaveRoom(c, claimID)
	}

	h.online[c.email]--
	if h.online[c.email] <= 0 {
		delete(h.online, c.email)
		h.broadcast(mustEvent(EventUserStatus, StatusPayload{Email: c.email, Online: false}))
	}
	h.log.WithField("email", c.email).Debug("websocket client disconnected")
}

func (h *Hub) handleEvent(c *Client, event Event) {
	switch event.Type {
	case EventUserOnline:
		// Presence is already tracked from the authenticated connection;
		// the event is accepted for protocol compatibility.
	case EventJoinClaim:
		var ref ClaimRef
		if err := json.Unmarshal(event.Data, &ref); err != nil || ref.ClaimID == "" {
			return
		}
		if !h.isParty(c, ref.ClaimID) {
			c.trySend(mustEvent(EventError, ErrorPayload{Message: "not a party to this claim"}))
			return
		}
		h.joinRoom(c, ref.ClaimID)
	case EventLeaveClaim:
		var ref ClaimRef
		if err := json.Unmarshal(event.Data, &ref); err != nil || ref.ClaimID == "" {
			return
		}
		h.leaveRoom(c, ref.ClaimID)
	case EventSendMessage:
		h.handleSendMessage(c, event.Data)
	case EventTypingStart, EventTypingStop:
		var payload TypingPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil || payload.ClaimID == "" {
			return
		}
		payload.Email = c.email
		payload.Name = c.name
		payload.Typing = event.Type == EventTypingStart
		h.broadcastRoom(payload.ClaimID, mustEvent(EventUserTyping, payload), c)
	case EventCheckOnlineStatus:
		var payload StatusPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return
		}
		payload.Online = h.online[payload.Email] > 0
		c.trySend(mustEvent(EventOnlineStatusResponse, payload))
	default:
		h.log.WithField("type", event.Type).Debug("ignoring unknown websocket event")
	}
}

// handleSendMessage persists a chat message and fans it out to the claim
// room. The receiver gets a notification when they are not in the room.
func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ClaimID == "" || payload.Message == "" {
		return
	}

	ctx := context.Background()
	claim, err := store.GetClaim(ctx, h.db, payload.ClaimID)
	if err != nil {
		h.log.WithError(err).Error("loading claim for websocket message")
		return
	}
	if claim == nil || (claim.Status != model.ClaimStatusAccepted && claim.Status != model.ClaimStatusDone) {
		c.trySend(mustEvent(EventError, ErrorPayload{Message: "conversation not available"}))
		return
	}
	if !h.isParty(c, payload.ClaimID) {
		c.trySend(mustEvent(EventError, ErrorPayload{Message: "not a party to this claim"}))
		return
	}

	msg, err := store.CreateMessage(ctx, h.db, &model.Message{
		ClaimID:       payload.ClaimID,
		SenderEmail:   c.email,
		ReceiverEmail: payload.ReceiverEmail,
		Content:       payload.Message,
	})
	if err != nil {
		h.log.WithError(err).Error("persisting websocket message")
		c.trySend(mustEvent(EventError, ErrorPayload{Message: "message not delivered"}))
		return
	}

	h.broadcastRoom(payload.ClaimID, mustEvent(EventNewMessage, msg), nil)

	if !h.inRoom(payload.ReceiverEmail, payload.ClaimID) {
		h.notifyReceiver(ctx, claim, msg)
	}
}

// notifyReceiver records a new-message notification for a receiver who is
// not currently in the chat room.
func (h *Hub) notifyReceiver(ctx context.Context, claim *model.Claim, msg *model.Message) {
	receiver, err := store.GetUserByEmail(ctx, h.db, msg.ReceiverEmail)
	if err != nil || receiver == nil {
		return
	}
	_, err = store.CreateNotification(ctx, h.db, &model.Notification{
		UserID:      receiver.ID,
		Type:        model.NotificationNewMessage,
		ClaimID:     claim.ID,
		ItemID:      claim.ItemID,
		ItemTitle:   claim.ItemTitle,
		SenderEmail: msg.SenderEmail,
		Message:     msg.Content,
	})
	if err != nil {
		h.log.WithError(err).Error("creating message notification")
	}
}

// isParty reports whether the client is the claimer or the item reporter
// of the given claim.
func (h *Hub) isParty(c *Client, claimID string) bool {
	ctx := context.Background()
	claim, err := store.GetClaim(ctx, h.db, claimID)
	if err != nil || claim == nil {
		return false
	}
	if claim.ClaimerEmail == c.email {
		return true
	}
	item, err := store.GetItem(ctx, h.db, claim.ItemID)
	if err != nil || item == nil {
		return false
	}
	return item.ReporterEmail == c.email
}

func (h *Hub) joinRoom(c *Client, claimID string) {
	if h.rooms[claimID] == nil {
		h.rooms[claimID] = make(map[*Client]bool)
	}
	h.rooms[claimID][c] = true
	c.rooms[claimID] = true
}

func (h *Hub) leaveRoom(c *Client, claimID string) {
	if room := h.rooms[claimID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, claimID)
		}
	}
	delete(c.rooms, claimID)
}

func (h *Hub) inRoom(email, claimID string) bool {
	for client := range h.rooms[claimID] {
		if client.email == email {
			return true
		}
	}
	return false
}

func (h *Hub) broadcast(message []byte) {
	for client := range h.clients {
		client.trySend(message)
	}
}

// broadcastRoom sends to every room member except the excluded client.
func (h *Hub) broadcastRoom(claimID string, message []byte, exclude *Client) {
	for client := range h.rooms[claimID] {
		if client != exclude {
			client.trySend(message)
		}
	}
}
