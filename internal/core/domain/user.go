package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	TokenVersion int64
	CreatedAt    time.Time
}
