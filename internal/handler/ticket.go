package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/middleware"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/repository"
)

// TicketHandler exposes ticket CRUD. Attachments ride along on reads.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func (h *TicketHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	tickets, err := h.Tickets.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data(tickets))
}

func (h *TicketHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	ticket, err := h.Tickets.Get(ctx, c.Param("uuid"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("Ticket not found")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.Ticket{ticket}))
}

type ticketRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (h *TicketHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return httpx.Unauthorized("unauthorized")
	}
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return httpx.BadRequest("title is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	ticket, err := h.Tickets.Create(ctx, req.Title, req.Description, user.UUID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, httpx.Data([]model.Ticket{ticket}))
}

func (h *TicketHandler) Update(c echo.Context) error {
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	var description string
	if req.Description != nil {
		description = *req.Description
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	ticket, err := h.Tickets.Update(ctx, c.Param("uuid"), req.Title, description)
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("Ticket not found")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.Ticket{ticket}))
}

// Delete removes the ticket and returns its last known state. Attachment
// rows cascade; their stored objects are removed through the attachment
// endpoint, not here.
func (h *TicketHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), handlerTimeout)
	defer cancel()

	ticket, err := h.Tickets.Delete(ctx, c.Param("uuid"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.NotFound("Ticket not found")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpx.Data([]model.Ticket{ticket}))
}
