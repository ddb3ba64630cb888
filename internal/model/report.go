package model

import "time"

// FakeReport flags a completed item as a suspected false resolution.
type FakeReport struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"itemId"`
	ItemTitle     string    `json:"itemTitle"`
	ReporterName  string    `json:"reporterName"`
	ReporterEmail string    `json:"reporterEmail"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
