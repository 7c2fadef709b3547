package models

import "time"

// Notification is one entry in a user's notification feed.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"` // recipient username
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
