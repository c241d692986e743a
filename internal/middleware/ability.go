package middleware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

// RoleResolver is the slice of the role repository the gate needs.
type RoleResolver interface {
	RoleForUser(ctx context.Context, userUUID string) (model.Role, error)
	PermissionNames(ctx context.Context, roleUUID string) ([]string, error)
}

// RequireAbility gates a route on a capability. It must run after the
// session guard: the current user's role and its permissions are loaded per
// request and evaluated as a typed set. A role named "admin" passes any
// check regardless of explicit permission rows.
func RequireAbility(roles RoleResolver, action auth.Action, subject auth.Subject) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return httpx.Unauthorized("unauthorized")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			ability, err := resolveAbility(ctx, roles, user.UUID)
			if err != nil {
				return err
			}
			if !ability.Can(action, subject) {
				return httpx.Forbidden(fmt.Sprintf("You don't have permission to %s %s", action, subject))
			}
			return next(c)
		}
	}
}

func resolveAbility(ctx context.Context, roles RoleResolver, userUUID string) (auth.Ability, error) {
	role, err := roles.RoleForUser(ctx, userUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Ability{}, httpx.NotFound("User role not found")
		}
		return auth.Ability{}, err
	}
	// defensive: an assignment pointing at a deleted role row
	if role.UUID == "" {
		return auth.Ability{}, httpx.NotFound("Role not found")
	}
	if role.Name == "admin" {
		return auth.ManageAll(), nil
	}

	names, err := roles.PermissionNames(ctx, role.UUID)
	if err != nil {
		return auth.Ability{}, err
	}
	caps := make([]auth.Capability, 0, len(names))
	for _, name := range names {
		cap, err := auth.ParseCapability(name)
		if err != nil {
			slog.Warn("skipping malformed permission row", "name", name, "error", err)
			continue
		}
		caps = append(caps, cap)
	}
	return auth.NewAbility(caps...), nil
}
