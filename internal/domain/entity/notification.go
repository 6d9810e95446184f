package entity

import "time"

// Notification status constants.
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Notification is an outbox row: written in the same transaction as the
// lifecycle change that produced it, delivered asynchronously afterwards.
// Delivery failure never rolls back the committed transition.
type Notification struct {
	ID           string     `json:"id"`
	RequestID    string     `json:"request_id"`
	Recipient    string     `json:"recipient"`
	TemplateKind string     `json:"template_kind"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
