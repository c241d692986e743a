package model

import "time"

// Ticket is a support ticket. Assignee is optional.
type Ticket struct {
	UUID         string       `json:"uuid"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	CreatorUUID  string       `json:"creator_uuid"`
	AssigneeUUID *string      `json:"assignee_uuid"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

// Attachment binds a stored object to a ticket. The row uuid doubles as the
// object key in the bucket.
type Attachment struct {
	UUID       string    `json:"uuid"`
	TicketUUID string    `json:"ticket_uuid"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}
