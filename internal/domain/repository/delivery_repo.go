package repository

import (
	"context"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
)

// DeliveryRepository defines the contract for the delivery journal (e.g., a database).
type DeliveryRepository interface {
	// Save claims the event id for a new delivery.
	// It returns ErrDuplicateRecord when the event was already claimed.
	Save(ctx context.Context, d *model.Delivery) (*model.Delivery, error)

	// GetByEventID retrieves the delivery of an event.
	GetByEventID(ctx context.Context, eventID string) (*model.Delivery, error)

	// UpdateOutcome stores the status, status code, error and completion time of a delivery.
	UpdateOutcome(ctx context.Context, d *model.Delivery) error
}

// DeliveryCache defines the contract for a caching layer.
type DeliveryCache interface {
	// Get retrieves an item from the cache.
	Get(ctx context.Context, eventID string) (*model.Delivery, error)

	// Set adds an item to the cache for a specified duration.
	Set(ctx context.Context, d *model.Delivery, expiration time.Duration) error

	// Delete removes an item from the cache.
	Delete(ctx context.Context, eventID string) error
}
