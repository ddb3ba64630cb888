package model

import "time"

// Notification is created as a side effect of claim lifecycle events.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	ClaimID     string    `json:"claimId,omitempty"`
	ItemID      string    `json:"itemId,omitempty"`
	ItemTitle   string    `json:"itemTitle,omitempty"`
	SenderName  string    `json:"senderName,omitempty"`
	SenderEmail string    `json:"senderEmail,omitempty"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification types.
const (
	NotificationClaimReceived = "claim_received"
	NotificationClaimAccepted = "claim_accepted"
	NotificationClaimDeclined = "claim_declined"
	NotificationClaimDone     = "claim_done"
	NotificationNewMessage    = "new_message"
)
