package models

import "time"

// User represents a locally registered user account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"` // Never expose this to the client
	CreatedAt time.Time `json:"createdAt"`
}
