package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

type fakeRoles struct {
	role  model.Role
	err   error
	perms []string
}

func (f *fakeRoles) RoleForUser(_ context.Context, _ string) (model.Role, error) {
	return f.role, f.err
}

func (f *fakeRoles) PermissionNames(_ context.Context, _ string) ([]string, error) {
	return f.perms, nil
}

func runGate(t *testing.T, roles *fakeRoles, user *model.User, action auth.Action, subject auth.Subject) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/users/u2", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if user != nil {
		c.Set(userContextKey, *user)
	}
	gate := RequireAbility(roles, action, subject)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return gate(c)
}

func TestRequireAbilityNeedsSession(t *testing.T) {
	err := runGate(t, &fakeRoles{}, nil, auth.ActionRead, auth.SubjectUser)

	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRequireAbilityAdminPassesEverything(t *testing.T) {
	roles := &fakeRoles{role: model.Role{UUID: "r1", Name: "admin"}}
	user := &model.User{UUID: "u1"}

	assert.NoError(t, runGate(t, roles, user, auth.ActionDelete, auth.SubjectUser))
	assert.NoError(t, runGate(t, roles, user, auth.ActionCreate, auth.SubjectSubscription))
}

func TestRequireAbilityDeniesMissingGrant(t *testing.T) {
	roles := &fakeRoles{
		role:  model.Role{UUID: "r2", Name: "user"},
		perms: []string{"read:user", "create:ticket"},
	}
	user := &model.User{UUID: "u1"}

	err := runGate(t, roles, user, auth.ActionDelete, auth.SubjectUser)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "You don't have permission to delete user", apiErr.Message)

	assert.NoError(t, runGate(t, roles, user, auth.ActionRead, auth.SubjectUser))
}

func TestRequireAbilitySkipsMalformedPermissionRows(t *testing.T) {
	roles := &fakeRoles{
		role:  model.Role{UUID: "r2", Name: "user"},
		perms: []string{"not-a-capability", "read:ticket"},
	}
	user := &model.User{UUID: "u1"}

	assert.NoError(t, runGate(t, roles, user, auth.ActionRead, auth.SubjectTicket))
}

func TestRequireAbilityUserWithoutRole(t *testing.T) {
	roles := &fakeRoles{err: sql.ErrNoRows}
	user := &model.User{UUID: "u1"}

	err := runGate(t, roles, user, auth.ActionRead, auth.SubjectUser)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "User role not found", apiErr.Message)
}

func TestRequireAbilityDanglingRoleAssignment(t *testing.T) {
	roles := &fakeRoles{role: model.Role{}}
	user := &model.User{UUID: "u1"}

	err := runGate(t, roles, user, auth.ActionRead, auth.SubjectUser)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Role not found", apiErr.Message)
}
