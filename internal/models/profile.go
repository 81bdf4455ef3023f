package models

import "time"

// Profile holds the personal attributes owned 1:1 by a User. A profile
// row is created in the same transaction as its user and is never
// absent while the user exists.
type Profile struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	Bio         string     `json:"bio"`
	PicturePath *string    `json:"picturePath,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
