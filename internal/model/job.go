package model

import "time"

// JobStatus enumerates the CSV import lifecycle. Transitions run strictly
// pending -> in_progress -> (completed | failed); terminal states never revert.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job tracks one asynchronous CSV import. UUID is the correlation id shared
// with the queue task. Errors holds the JSON-encoded row-error list on failure.
type Job struct {
	UUID      string    `json:"uuid"`
	UserUUID  string    `json:"user_uuid"`
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	Data      *string   `json:"data"`
	Errors    *string   `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
}
