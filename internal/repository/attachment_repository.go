package repository

import (
	"context"
	"database/sql"

	"github.com/arekbor/helpdesk/internal/model"
)

type AttachmentRepo struct{ DB *sql.DB }

func NewAttachmentRepo(db *sql.DB) *AttachmentRepo { return &AttachmentRepo{DB: db} }

// Create inserts an attachment row. The uuid is the bucket object key.
func (r *AttachmentRepo) Create(ctx context.Context, a model.Attachment) (model.Attachment, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO attachments (uuid, ticket_uuid, file_name, file_type, url) VALUES (?,?,?,?,?)",
		a.UUID, a.TicketUUID, a.FileName, a.FileType, a.URL)
	if err != nil {
		return model.Attachment{}, err
	}
	return r.Get(ctx, a.UUID)
}

// Get fetches an attachment by uuid.
func (r *AttachmentRepo) Get(ctx context.Context, id string) (model.Attachment, error) {
	var a model.Attachment
	err := r.DB.QueryRowContext(ctx,
		"SELECT uuid, ticket_uuid, file_name, file_type, url, created_at FROM attachments WHERE uuid=? LIMIT 1", id).
		Scan(&a.UUID, &a.TicketUUID, &a.FileName, &a.FileType, &a.URL, &a.CreatedAt)
	return a, err
}

// Delete removes an attachment row.
func (r *AttachmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM attachments WHERE uuid=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
