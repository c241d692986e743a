package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/middleware"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/repository"
)

// JobStore is the slice of the job repository the handler needs.
type JobStore interface {
	Get(ctx context.Context, id string) (model.Job, error)
}

// JobHandler reports background job progress.
type JobHandler struct {
	Jobs  JobStore
	Roles middleware.RoleResolver
}

// NewJobHandler wires the handler over the concrete repositories.
func NewJobHandler(jobs *repository.JobRepo, roles *repository.RoleRepo) *JobHandler {
	return &JobHandler{Jobs: jobs, Roles: roles}
}

// Get returns the job row for a processing id handed out at upload time.
// Only the uploader or an admin may see it; everyone else gets the same 404
// an unknown id produces.
func (h *JobHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return httpx.Unauthorized("unauthorized")
	}
	id := c.Param("uuid")

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	job, err := h.Jobs.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound(fmt.Sprintf("job: %s was not found", id))
	} else if err != nil {
		return err
	}

	if job.UserUUID != user.UUID {
		role, err := h.Roles.RoleForUser(ctx, user.UUID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if role.Name != "admin" {
			return httpx.NotFound(fmt.Sprintf("job: %s was not found", id))
		}
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.Job{job}))
}
