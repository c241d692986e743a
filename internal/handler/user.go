package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/middleware"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/queue"
	"github.com/arekbor/helpdesk/internal/repository"
)

// CSVEnqueuer hands the uploaded file to the background queue.
type CSVEnqueuer interface {
	EnqueueCSVImport(p queue.CSVImportPayload) error
}

// UserHandler exposes user CRUD and the bulk CSV import upload.
type UserHandler struct {
	Users *repository.UserRepo
	Queue CSVEnqueuer
}

func (h *UserHandler) List(c echo.Context) error {
	var params repository.ListParams
	params.Search = c.QueryParam("search")
	params.OrderBy = c.QueryParam("order_by")

	limitRaw, offsetRaw := c.QueryParam("limit"), c.QueryParam("offset")
	if (limitRaw == "") != (offsetRaw == "") {
		return httpx.BadRequest("Offset and limit are required when both are set")
	}
	if limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 1 {
			return httpx.BadRequest("limit must be a positive integer")
		}
		offset, err := strconv.Atoi(offsetRaw)
		if err != nil || offset < 0 {
			return httpx.BadRequest("offset must be a non-negative integer")
		}
		params.Limit, params.Offset = limit, offset
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	users, err := h.Users.List(ctx, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data(users))
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	user, err := h.Users.GetByUUID(ctx, c.Param("uuid"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("User not found")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.User{user}))
}

type userRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return httpx.BadRequest("first_name, last_name and email are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return httpx.BadRequest("email must be a valid email address")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	user, err := h.Users.Create(ctx, req.FirstName, req.LastName, req.Email, req.AvatarURL)
	if errors.Is(err, repository.ErrEmailExists) {
		return httpx.BadRequest("User already exist")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, httpx.Data([]model.User{user}))
}

func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return httpx.BadRequest("email must be a valid email address")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	user, err := h.Users.Update(ctx, c.Param("uuid"), req.FirstName, req.LastName, req.Email, req.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("User not found")
	} else if errors.Is(err, repository.ErrEmailExists) {
		return httpx.BadRequest("User already exist")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.User{user}))
}

func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("uuid")

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("User not found")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": fmt.Sprintf("User %s deleted", id)})
}

// csvContentTypes the upload endpoint accepts. Browsers disagree on the
// MIME type for .csv files.
var csvContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"application/csv":          {},
	"application/vnd.ms-excel": {},
}

// UploadCSV accepts a CSV of users and enqueues its processing. The response
// carries the job id so the client can poll /processing/:uuid.
func (h *UserHandler) UploadCSV(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return httpx.Unauthorized("unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest("no file uploaded")
	}
	contentType, _, _ := strings.Cut(fileHeader.Header.Get("Content-Type"), ";")
	if _, ok := csvContentTypes[strings.TrimSpace(contentType)]; !ok {
		return httpx.UnsupportedMediaType("Invalid file type. Only CSV files are allowed.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	jobID := uuid.NewString()
	if err := h.Queue.EnqueueCSVImport(queue.CSVImportPayload{
		JobUUID:  jobID,
		UserUUID: user.UUID,
		CSV:      string(data),
	}); err != nil {
		return fmt.Errorf("enqueue csv import: %w", err)
	}

	return c.JSON(http.StatusAccepted, map[string]any{
		"message":    "CSV file uploaded",
		"statusCode": http.StatusAccepted,
		"meta":       map[string]string{"jobId": jobID},
	})
}
