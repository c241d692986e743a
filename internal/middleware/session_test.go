package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

type fakeSessions struct {
	byHash  map[string]model.User
	touched map[string]time.Time
}

func (f *fakeSessions) UserByActiveToken(_ context.Context, hash string) (model.User, error) {
	if u, ok := f.byHash[hash]; ok {
		return u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeSessions) Touch(_ context.Context, hash string, expiresAt time.Time) error {
	if f.touched == nil {
		f.touched = map[string]time.Time{}
	}
	f.touched[hash] = expiresAt
	return nil
}

func runGuard(t *testing.T, sessions *fakeSessions, cookie *http.Cookie) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(sessions, 30)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestSessionGuardRejectsMissingCookie(t *testing.T) {
	_, _, err := runGuard(t, &fakeSessions{}, nil)

	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSessionGuardRejectsUnknownToken(t *testing.T) {
	_, _, err := runGuard(t, &fakeSessions{byHash: map[string]model.User{}},
		&http.Cookie{Name: CookieName, Value: "stale-token"})

	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSessionGuardAttachesUserAndSlidesExpiry(t *testing.T) {
	raw := "valid-token"
	hash := auth.HashToken(raw)
	sessions := &fakeSessions{byHash: map[string]model.User{
		hash: {UUID: "u1", Email: "jan@example.com"},
	}}

	rec, c, err := runGuard(t, sessions, &http.Cookie{Name: CookieName, Value: raw})
	require.NoError(t, err)

	user, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Equal(t, "u1", user.UUID)

	// the row and the refreshed cookie carry the same new expiry
	touched, ok := sessions.touched[hash]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), touched, 2*time.Second)

	var refreshed *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			refreshed = ck
		}
	}
	require.NotNil(t, refreshed)
	assert.Equal(t, raw, refreshed.Value)
	assert.True(t, refreshed.HttpOnly)
	assert.WithinDuration(t, touched, refreshed.Expires, time.Second)
}
