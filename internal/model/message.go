package model

import "time"

// Message belongs to the conversation scoped to one accepted claim.
type Message struct {
	ID            string    `json:"id"`
	ClaimID       string    `json:"claimId"`
	SenderEmail   string    `json:"senderEmail"`
	ReceiverEmail string    `json:"receiverEmail"`
	Content       string    `json:"content"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Conversation is the per-claim message thread summary for one viewer.
// There is exactly one (implicit) conversation per accepted claim.
type Conversation struct {
	ClaimID          string    `json:"claimId"`
	ItemID           string    `json:"itemId"`
	ItemTitle        string    `json:"itemTitle"`
	CounterpartName  string    `json:"counterpartName"`
	CounterpartEmail string    `json:"counterpartEmail"`
	LastMessage      string    `json:"lastMessage,omitempty"`
	LastMessageAt    time.Time `json:"lastMessageAt"`
	UnreadCount      int       `json:"unreadCount"`
}
