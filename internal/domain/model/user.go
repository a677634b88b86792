package model

import "time"

// User represents a registered customer. IsAdmin grants access to the order
// management and proof review endpoints.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
