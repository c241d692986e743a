package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/storage"
)

// AttachmentStore is the slice of the attachment repository the handler needs.
type AttachmentStore interface {
	Create(ctx context.Context, a model.Attachment) (model.Attachment, error)
	Get(ctx context.Context, id string) (model.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// TicketGetter checks that the target ticket exists before an upload.
type TicketGetter interface {
	Get(ctx context.Context, id string) (model.Ticket, error)
}

// AttachmentHandler uploads ticket attachments to the bucket and keeps the
// database rows in sync with the stored objects.
type AttachmentHandler struct {
	Attachments AttachmentStore
	Tickets     TicketGetter
	Store       storage.ObjectStore
}

// uploadTimeout covers the bucket round trip, which is slower than a DB hit.
const uploadTimeout = 30 * time.Second

func (h *AttachmentHandler) Create(c echo.Context) error {
	ticketUUID := c.QueryParam("ticket_uuid")
	if ticketUUID == "" {
		return httpx.BadRequest("ticket_uuid is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	if _, err := h.Tickets.Get(ctx, ticketUUID); errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("Ticket not found")
	} else if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest("no file uploaded")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uuid.NewString()
	if err := h.Store.Put(ctx, key, body, contentType); err != nil {
		return err
	}

	attachment, err := h.Attachments.Create(ctx, model.Attachment{
		UUID:       key,
		TicketUUID: ticketUUID,
		FileName:   fileHeader.Filename,
		FileType:   contentType,
		URL:        h.Store.URL(key),
	})
	if err != nil {
		// keep the bucket consistent with the failed insert
		if delErr := h.Store.Delete(ctx, key); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}
	return c.JSON(http.StatusCreated, httpx.Data([]model.Attachment{attachment}))
}

// Delete removes the row and the stored object. The object delete runs once,
// before the row delete, so a failed bucket call leaves the row pointing at
// an existing object.
func (h *AttachmentHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	attachment, err := h.Attachments.Get(ctx, c.Param("uuid"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("Attachment not found")
	} else if err != nil {
		return err
	}

	if err := h.Store.Delete(ctx, attachment.UUID); err != nil {
		return err
	}
	if err := h.Attachments.Delete(ctx, attachment.UUID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.Attachment{attachment}))
}
