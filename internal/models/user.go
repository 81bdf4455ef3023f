package models

import "time"

// User represents a credential identity in the system.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
	IsActive     bool   `json:"isActive"`
	// Unix timestamp of the last password change. Session tokens carry
	// the stamp they were issued against; a mismatch makes them stale.
	PasswordStamp int64     `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}
