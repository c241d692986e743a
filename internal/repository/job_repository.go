package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arekbor/helpdesk/internal/model"
)

// JobRepo tracks CSV import jobs. Status moves strictly forward: terminal
// writes are guarded on the current status so a redelivered queue task can
// never flip completed back to failed or vice versa.
type JobRepo struct{ DB *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{DB: db} }

const jobColumns = "uuid, user_uuid, name, status, data, errors, created_at"

// Create inserts a job row in pending state. Duplicate correlation ids
// surface as ErrEmailExists-style duplicates via the primary key; callers
// treat that as a redelivery signal, not a failure.
func (r *JobRepo) Create(ctx context.Context, id, userUUID, name string, data *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO jobs (uuid, user_uuid, name, status, data) VALUES (?,?,?,?,?)",
		id, userUUID, name, model.JobPending, data)
	return err
}

// Get fetches a job by correlation id.
func (r *JobRepo) Get(ctx context.Context, id string) (model.Job, error) {
	var j model.Job
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE uuid=? LIMIT 1", id).
		Scan(&j.UUID, &j.UserUUID, &j.Name, &j.Status, &j.Data, &j.Errors, &j.CreatedAt)
	return j, err
}

// MarkInProgress claims the job for a run. Both pending and in_progress rows
// qualify, so a redelivery can resume a job whose previous run crashed after
// claiming it. Returns false only for terminal (or missing) jobs.
func (r *JobRepo) MarkInProgress(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET status=? WHERE uuid=? AND status IN (?,?)",
		model.JobInProgress, id, model.JobPending, model.JobInProgress)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// the driver counts changed rows, not matched ones, so resuming an
	// in_progress job lands here; re-read to tell it from a terminal row
	var status model.JobStatus
	err = r.DB.QueryRowContext(ctx,
		"SELECT status FROM jobs WHERE uuid=? LIMIT 1", id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == model.JobInProgress, nil
}

// Finish writes the terminal state in a single conditional update. Only an
// in-progress job can be finished; the returned bool reports whether this
// call won the transition.
func (r *JobRepo) Finish(ctx context.Context, id string, status model.JobStatus, data, errs *string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET status=?, data=?, errors=? WHERE uuid=? AND status=?",
		status, data, errs, id, model.JobInProgress)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
