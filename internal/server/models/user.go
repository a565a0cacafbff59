package models

import "time"

// User is an account owning entries. PasswordHash is managed by the
// authentication layer and opaque here.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
