package model

import "time"

// Claim represents an ownership claim against someone else's item.
type Claim struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"itemId"`
	ItemTitle     string    `json:"itemTitle"`
	ClaimerID     string    `json:"claimerId"`
	ClaimerName   string    `json:"claimerName"`
	ClaimerEmail  string    `json:"claimerEmail"`
	ClaimerPhone  string    `json:"claimerPhone,omitempty"`
	ProofImageURL string    `json:"proofImage"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusAccepted = "accepted"
	ClaimStatusRejected = "rejected"
	ClaimStatusDone     = "done"
)

// claimTransitions maps each status to the statuses it may move to.
// Rejected and done are terminal.
var claimTransitions = map[string][]string{
	ClaimStatusPending:  {ClaimStatusAccepted, ClaimStatusRejected},
	ClaimStatusAccepted: {ClaimStatusDone},
}

// CanTransitionClaim reports whether a claim may move from one status to another.
func CanTransitionClaim(from, to string) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClaimTerminal reports whether a claim status is terminal.
func ClaimTerminal(status string) bool {
	return status == ClaimStatusRejected || status == ClaimStatusDone
}
