// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that owns tasks and sessions.
// PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller extracted from a valid session.
// Injected into the request context by the session auth middleware.
type Identity struct {
	UserID       string
	SessionToken string
}
