package model

import "time"

// Item represents a reported lost or found belonging.
type Item struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Location      string     `json:"location,omitempty"`
	Date          string     `json:"date,omitempty"`
	Contact       string     `json:"contact,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	ImageMime     string     `json:"image_mime,omitempty"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	ReporterID    string     `json:"reporterId"`
	ReporterName  string     `json:"reporterName"`
	ReporterEmail string     `json:"reporterEmail"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses. An item stays pending until one of its claims is accepted,
// and becomes completed when that claim is marked done.
const (
	ItemStatusPending   = "pending"
	ItemStatusAccepted  = "accepted"
	ItemStatusCompleted = "completed"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	return s == ItemStatusPending || s == ItemStatusAccepted || s == ItemStatusCompleted
}
