package models

import "time"

// AccountEvent represents a loggable action on an account.
type AccountEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "account.signin", "account.password_change"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}
