package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arekbor/helpdesk/internal/model"
)

type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketColumns = "uuid, title, description, creator_uuid, assignee_uuid, created_at, updated_at"

// Create inserts a ticket owned by creatorUUID and returns the stored row.
func (r *TicketRepo) Create(ctx context.Context, title string, description *string, creatorUUID string) (model.Ticket, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tickets (uuid, title, description, creator_uuid) VALUES (?,?,?,?)",
		id, title, description, creatorUUID)
	if err != nil {
		return model.Ticket{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches a ticket by uuid together with its attachments.
func (r *TicketRepo) Get(ctx context.Context, id string) (model.Ticket, error) {
	var t model.Ticket
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE uuid=? LIMIT 1", id).
		Scan(&t.UUID, &t.Title, &t.Description, &t.CreatorUUID, &t.AssigneeUUID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Ticket{}, err
	}

	t.Attachments = []model.Attachment{}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT uuid, ticket_uuid, file_name, file_type, url, created_at FROM attachments WHERE ticket_uuid=?", id)
	if err != nil {
		return model.Ticket{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.UUID, &a.TicketUUID, &a.FileName, &a.FileType, &a.URL, &a.CreatedAt); err != nil {
			return model.Ticket{}, err
		}
		t.Attachments = append(t.Attachments, a)
	}
	return t, rows.Err()
}

// List returns all tickets, each carrying its attachments.
func (r *TicketRepo) List(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+ticketColumns+" FROM tickets ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []model.Ticket{}
	index := map[string]int{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.UUID, &t.Title, &t.Description, &t.CreatorUUID, &t.AssigneeUUID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Attachments = []model.Attachment{}
		index[t.UUID] = len(tickets)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	attRows, err := r.DB.QueryContext(ctx,
		"SELECT uuid, ticket_uuid, file_name, file_type, url, created_at FROM attachments")
	if err != nil {
		return nil, err
	}
	defer attRows.Close()
	for attRows.Next() {
		var a model.Attachment
		if err := attRows.Scan(&a.UUID, &a.TicketUUID, &a.FileName, &a.FileType, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[a.TicketUUID]; ok {
			tickets[i].Attachments = append(tickets[i].Attachments, a)
		}
	}
	return tickets, attRows.Err()
}

// Update applies a partial update; empty title/description keep stored values.
func (r *TicketRepo) Update(ctx context.Context, id, title, description string) (model.Ticket, error) {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE tickets SET
			title       = COALESCE(NULLIF(?, ''), title),
			description = COALESCE(NULLIF(?, ''), description)
		WHERE uuid=?`,
		title, description, id)
	if err != nil {
		return model.Ticket{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes a ticket and returns the deleted row's snapshot.
func (r *TicketRepo) Delete(ctx context.Context, id string) (model.Ticket, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return model.Ticket{}, err
	}
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM tickets WHERE uuid=?", id); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}
