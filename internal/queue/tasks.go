// Package queue wires the CSV import pipeline onto asynq. The producer side
// enqueues tasks from the upload handler; the worker binary consumes them
// and drives the job row through its status machine.
package queue

// TypeCSVImport identifies bulk user-import tasks.
const TypeCSVImport = "csv:import"

// CSVImportPayload carries the raw file and its ownership. JobUUID is the
// correlation id shared between the queue task and the jobs row.
type CSVImportPayload struct {
	JobUUID  string `json:"job_uuid"`
	UserUUID string `json:"user_uuid"`
	CSV      string `json:"csv"`
}
