package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
)

// AcceptedResponse is returned once an event has been handed to the dispatcher.
type AcceptedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// DeliveryResponse defines the structure for a delivery journal record.
type DeliveryResponse struct {
	ID          uuid.UUID  `json:"id"`
	EventID     string     `json:"event_id"`
	Level       string     `json:"level"`
	Provider    string     `json:"provider"`
	Status      string     `json:"status"`
	StatusCode  int        `json:"status_code,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// toDeliveryResponse is a helper function to map the domain model to the DTO.
func toDeliveryResponse(d *model.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:          d.ID,
		EventID:     d.EventID,
		Level:       d.Level.String(),
		Provider:    d.Provider,
		Status:      string(d.Status),
		StatusCode:  d.StatusCode,
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
}
