package redis

import (
	"context"
	"errors"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Ensure CachedDeliveryRepository implements the interface
var _ repo.DeliveryRepository = (*CachedDeliveryRepository)(nil)

const defaultTTL = 24 * time.Hour

// CachedDeliveryRepository is a decorator for a DeliveryRepository
// that adds a caching layer using Redis.
type CachedDeliveryRepository struct {
	primaryRepo repo.DeliveryRepository
	cache       repo.DeliveryCache
	logger      zerolog.Logger
	ttl         time.Duration
}

// NewCachedDeliveryRepository creates a new instance of the cached repository.
// A non-positive ttl falls back to 24 hours.
func NewCachedDeliveryRepository(
	primaryRepo repo.DeliveryRepository,
	cache repo.DeliveryCache,
	logger *zerolog.Logger,
	ttl time.Duration,
) *CachedDeliveryRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedDeliveryRepository{
		primaryRepo: primaryRepo,
		cache:       cache,
		logger:      logger.With().Str("layer", "cached_repository").Logger(),
		ttl:         ttl,
	}
}

// Save persists the claim in the primary repository. Claims always go to the
// primary store so that duplicate detection stays authoritative.
func (r *CachedDeliveryRepository) Save(ctx context.Context, d *model.Delivery) (*model.Delivery, error) {
	return r.primaryRepo.Save(ctx, d)
}

// GetByEventID implements the cache-aside pattern.
func (r *CachedDeliveryRepository) GetByEventID(ctx context.Context, eventID string) (*model.Delivery, error) {
	cached, err := r.cache.Get(ctx, eventID)
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, repo.ErrNotFound) {
		r.logger.Error().Err(err).Str("event_id", eventID).Msg("cache get error, falling back to primary repository")
	}

	primary, err := r.primaryRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Pending records are not cached.
	if primary.Status != model.StatusPending {
		if err := r.cache.Set(ctx, primary, r.ttl); err != nil {
			r.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to set cache after db fetch")
		}
	}

	return primary, nil
}

// UpdateOutcome first updates the primary repository,
// then invalidates the corresponding cache entry.
func (r *CachedDeliveryRepository) UpdateOutcome(ctx context.Context, d *model.Delivery) error {
	if err := r.primaryRepo.UpdateOutcome(ctx, d); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, d.EventID); err != nil {
		r.logger.Error().Err(err).Str("event_id", d.EventID).Msg("failed to invalidate cache after update")
	}

	return nil
}
