package model

import "time"

// Session is an active login. The raw token travels only in the HTTP-only
// cookie; the row stores its SHA-256 digest. Logout flips IsActive instead
// of deleting the row (soft revocation).
type Session struct {
	UUID      string
	UserUUID  string
	TokenHash string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}
