package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/arekbor/helpdesk/internal/csvimport"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/repository"
)

// JobStore is the slice of the job repository the worker needs.
type JobStore interface {
	Create(ctx context.Context, id, userUUID, name string, data *string) error
	Get(ctx context.Context, id string) (model.Job, error)
	MarkInProgress(ctx context.Context, id string) (bool, error)
	Finish(ctx context.Context, id string, status model.JobStatus, data, errs *string) (bool, error)
}

// UserCreator inserts the users a valid import carries.
type UserCreator interface {
	Create(ctx context.Context, firstName, lastName, email string, avatarURL *string) (model.User, error)
}

// CSVImportProcessor handles csv:import tasks. Terminal job transitions are
// single conditional writes guarded on the in-progress status, so at-least-
// once redelivery can never overwrite a completed or failed job.
type CSVImportProcessor struct {
	Jobs  JobStore
	Users UserCreator
}

// ProcessTask mirrors the queue task into a jobs row and drives it
// pending -> in_progress -> (completed | failed).
func (p *CSVImportProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CSVImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	log := slog.With("job", payload.JobUUID, "user", payload.UserUUID)

	if err := p.Jobs.Create(ctx, payload.JobUUID, payload.UserUUID, TypeCSVImport, &payload.CSV); err != nil {
		// a pre-existing row means redelivery; a terminal row is done
		job, getErr := p.Jobs.Get(ctx, payload.JobUUID)
		if getErr != nil {
			return fmt.Errorf("create job row: %w", err)
		}
		if job.Status.Terminal() {
			log.Info("skipping redelivered task for finished job", "status", job.Status)
			return nil
		}
	}

	// claims pending jobs and resumes in_progress ones left behind by a
	// crashed run; only a terminal job refuses the claim
	if ok, err := p.Jobs.MarkInProgress(ctx, payload.JobUUID); err != nil {
		return fmt.Errorf("mark in progress: %w", err)
	} else if !ok {
		log.Info("skipping redelivered task for finished job")
		return nil
	}

	rows, rowErrs, err := csvimport.Parse(payload.CSV)
	if errors.Is(err, csvimport.ErrInvalidHeaders) {
		return p.fail(ctx, payload.JobUUID, []string{"Invalid headers"})
	}
	if err != nil {
		return p.fail(ctx, payload.JobUUID, []string{err.Error()})
	}
	if len(rowErrs) > 0 {
		return p.fail(ctx, payload.JobUUID, rowErrs)
	}

	for _, row := range rows {
		if _, err := p.Users.Create(ctx, row.FirstName, row.LastName, row.Email, row.AvatarURL); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				log.Info("skipping duplicate email", "email", row.Email)
				continue
			}
			return fmt.Errorf("insert imported user: %w", err)
		}
	}

	doneMsg := "CSV parsed successfully"
	ok, err := p.Jobs.Finish(ctx, payload.JobUUID, model.JobCompleted, &doneMsg, nil)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if !ok {
		log.Warn("job finished elsewhere before completion write")
	}
	return nil
}

func (p *CSVImportProcessor) fail(ctx context.Context, jobUUID string, msgs []string) error {
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode job errors: %w", err)
	}
	errJSON := string(encoded)
	if _, err := p.Jobs.Finish(ctx, jobUUID, model.JobFailed, nil, &errJSON); err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	// validation failure is terminal; retrying the same file cannot succeed
	return nil
}
