package domain

import (
	"database/sql"
	"time"
)

const (
	MessageStatusSent     = "sent"
	DeliveryStatusPending = "pending"
)

// DeliveryEntry is one recipient's status inside a campaign delivery report.
type DeliveryEntry struct {
	PersonID string `json:"personId"`
	Status   string `json:"status"`
}

// Message is a recorded campaign send (messages table).
type Message struct {
	ID             int64           `db:"id"`
	SenderID       int64           `db:"sender_id"`
	Direction      sql.NullString  `db:"direction"`
	TemplateID     sql.NullInt64   `db:"template_id"` // SET NULL when the template is deleted
	Recipients     []string        `db:"recipients"`
	Body           string          `db:"message"`
	Status         string          `db:"status"`
	DeliveryReport []DeliveryEntry `db:"delivery_report"` // JSONB, mirrors Recipients
	SentAt         sql.NullTime    `db:"sent_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// PendingReport builds the initial delivery report, one pending entry per
// recipient in order.
func PendingReport(recipients []string) []DeliveryEntry {
	report := make([]DeliveryEntry, len(recipients))
	for i, id := range recipients {
		report[i] = DeliveryEntry{PersonID: id, Status: DeliveryStatusPending}
	}
	return report
}
