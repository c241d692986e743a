// Package auth provides the credential, session-token and OTP primitives
// used by the authentication service and its middleware.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionToken is an opaque login token. Raw goes to the client inside an
// HTTP-only cookie; only the SHA-256 digest of Raw is persisted, so a stolen
// sessions table cannot be replayed against the API.
type SessionToken struct {
	Raw string
	Exp time.Time
}

// NewSessionToken returns a 32-byte random token (64 hex chars) expiring
// ttl minutes from now.
func NewSessionToken(ttlMin int) (SessionToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}

// HashToken returns the SHA-256 hex digest of a raw session token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewOTP returns a 6-digit one-time code drawn from crypto/rand.
func NewOTP() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
