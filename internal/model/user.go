package model

import (
	"errors"
	"time"
)

// User represents a registered account.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Avatar       string     `json:"avatar,omitempty"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"isAdmin"`
	IsBlocked    bool       `json:"isBlocked"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// ReportStats counts a user's reports in each lifecycle phase.
type ReportStats struct {
	InProcess int `json:"inProcess"`
	Completed int `json:"completed"`
}

// UserStats is the per-user profile summary.
type UserStats struct {
	ItemsReported ReportStats `json:"itemsReported"`
	ItemsFound    ReportStats `json:"itemsFound"`
}

// GlobalStats is the public landing-page summary.
type GlobalStats struct {
	ItemsReported int `json:"itemsReported"`
	ItemsReturned int `json:"itemsReturned"`
	ActiveUsers   int `json:"activeUsers"`
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
