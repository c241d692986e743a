package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stateTTL bounds how long an OAuth round trip may take.
const stateTTL = 10 * time.Minute

var errInvalidState = errors.New("invalid oauth state")

// NewState signs a short-lived HS256 token used as the OAuth `state`
// parameter. Verifying it on the callback ties the redirect back to a flow
// this server actually started.
func NewState(secret string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"exp": now.Add(stateTTL).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyState checks the signature and expiry of an OAuth state token.
func VerifyState(secret, state string) error {
	tok, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidState
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return errInvalidState
	}
	return nil
}
