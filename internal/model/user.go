// Package model defines the row structs backing the repository layer.
// Field names mirror their database columns; password material lives in a
// separate credentials table so user rows are safe to serialize as-is.
package model

import "time"

// User represents an account holder as stored in the `users` table.
type User struct {
	UUID      string    `json:"uuid"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential holds a user's password hash and email-verification state.
// The OTP is cleared in the same statement that marks the email verified.
type Credential struct {
	UUID            string
	UserUUID        string
	PasswordHash    string
	OTP             *string
	IsEmailVerified bool
	CreatedAt       time.Time
}
