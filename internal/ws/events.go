package ws

import "encoding/json"

// Event is the wire envelope for both directions of the socket.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client-to-server event types.
const (
	EventUserOnline        = "user_online"
	EventJoinClaim         = "join_claim"
	EventLeaveClaim        = "leave_claim"
	EventSendMessage       = "send_message"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"
	EventCheckOnlineStatus = "check_online_status"
)

// Server-to-client event types.
const (
	EventNewMessage           = "new_message"
	EventUserTyping           = "user_typing"
	EventUserStatus           = "user_status"
	EventOnlineStatusResponse = "online_status_response"
	EventError                = "error"
)

// ClaimRef addresses a claim chat room.
type ClaimRef struct {
	ClaimID string `json:"claimId"`
}

// SendMessagePayload carries an outgoing chat message.
type SendMessagePayload struct {
	ClaimID       string `json:"claimId"`
	Message       string `json:"message"`
	ReceiverEmail string `json:"receiverEmail"`
}

// TypingPayload carries typing indicator events both ways.
type TypingPayload struct {
	ClaimID string `json:"claimId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Typing  bool   `json:"typing"`
}

// StatusPayload reports a user's presence.
type StatusPayload struct {
	Email  string `json:"email"`
	Online bool   `json:"online"`
}

// ErrorPayload reports a rejected event back to the sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

func mustEvent(eventType string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	out, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		panic(err)
	}
	return out
}
