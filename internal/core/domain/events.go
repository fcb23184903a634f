package domain

import "time"

// UserRegisteredEvent announces a successful signup.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	RegisteredAt time.Time
}

// UserSignedInEvent announces a successful credential sign-in.
type UserSignedInEvent struct {
	EventID    string
	UserID     string
	SignedInAt time.Time
}
