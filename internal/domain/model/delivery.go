package model

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the outcome of delivering one event's notification.
type Status string

const (
	StatusPending Status = "pending" // The event was claimed and the send is in flight.
	StatusSent    Status = "sent"    // The provider accepted the notification.
	StatusFailed  Status = "failed"  // The provider rejected it or the transport failed.
)

// Delivery is the journal record of one event's notification.
// It is technology-agnostic and does not contain any DB tags.
type Delivery struct {
	ID         uuid.UUID `json:"id"`
	EventID    string    `json:"event_id"`
	Level      Level     `json:"level"`
	Provider   string    `json:"provider"`
	Status     Status    `json:"status"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      *string   `json:"error,omitempty"` // Pointer to allow null value.

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewDelivery is a factory function for a pending delivery of the given event.
func NewDelivery(e *Event, provider string) *Delivery {
	return &Delivery{
		ID:        uuid.New(),
		EventID:   e.ID,
		Level:     e.Level,
		Provider:  provider,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Complete marks the delivery as finished. A nil sendErr means the send succeeded.
func (d *Delivery) Complete(statusCode int, sendErr error) {
	now := time.Now().UTC()
	d.CompletedAt = &now
	d.StatusCode = statusCode
	if sendErr != nil {
		msg := sendErr.Error()
		d.Status = StatusFailed
		d.Error = &msg
		return
	}
	d.Status = StatusSent
	d.Error = nil
}
