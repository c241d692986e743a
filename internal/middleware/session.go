// Package middleware provides the request guards shared by the API routes:
// cookie-session authentication, the capability gate and rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

// CookieName is the session cookie carrying the raw token.
const CookieName = "session_id"

// userContextKey is where the resolved user lands inside the echo context.
const userContextKey = "current_user"

// SessionResolver is the slice of the session repository the guard needs.
type SessionResolver interface {
	UserByActiveToken(ctx context.Context, tokenHash string) (model.User, error)
	Touch(ctx context.Context, tokenHash string, expiresAt time.Time) error
}

// SetSessionCookie writes the HTTP-only session cookie. The expiry always
// matches what was persisted for the session row.
func SetSessionCookie(c echo.Context, raw string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on logout.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken extracts the raw token from the request cookie.
func SessionToken(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// CurrentUser returns the user attached by the session guard.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// Session returns the authentication guard. It resolves the cookie token
// against an active, unexpired session row, attaches the user to the request
// context and extends both the row and the cookie to now+TTL in lockstep
// (sliding expiration). Every authenticated request both authorizes and
// silently renews the session.
func Session(sessions SessionResolver, ttlMin int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := SessionToken(c)
			if !ok {
				return httpx.Unauthorized("unauthorized")
			}
			hash := auth.HashToken(raw)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			user, err := sessions.UserByActiveToken(ctx, hash)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return httpx.Unauthorized("unauthorized")
				}
				return err
			}

			newExpiry := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
			if err := sessions.Touch(ctx, hash, newExpiry); err != nil {
				return err
			}
			SetSessionCookie(c, raw, newExpiry)

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}
