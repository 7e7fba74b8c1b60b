package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

// Ensure DeliveryRepository implements the interface
var _ repo.DeliveryRepository = (*DeliveryRepository)(nil)

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertDelivery = `
INSERT INTO deliveries (id, event_id, level, provider, status, status_code, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`

	selectDeliveryByEventID = `
SELECT id, event_id, level, provider, status, status_code, error, created_at, completed_at
FROM deliveries
WHERE event_id = $1`

	updateDeliveryOutcome = `
UPDATE deliveries
SET status = $2, status_code = $3, error = $4, completed_at = $5
WHERE event_id = $1`
)

// DeliveryRepository implements the repository.DeliveryRepository interface
// using PostgreSQL as a backend. See configs/migrations for the schema.
type DeliveryRepository struct {
	db     DBTX
	logger zerolog.Logger
}

// NewDeliveryRepository creates a new instance of the DeliveryRepository.
func NewDeliveryRepository(db DBTX, logger *zerolog.Logger) *DeliveryRepository {
	return &DeliveryRepository{
		db:     db,
		logger: logger.With().Str("layer", "postgres_repository").Logger(),
	}
}

// Save inserts a pending delivery. A second claim of the same event id
// violates the unique constraint and yields repository.ErrDuplicateRecord.
func (r *DeliveryRepository) Save(ctx context.Context, d *model.Delivery) (*model.Delivery, error) {
	var createdAt time.Time
	err := r.db.QueryRow(ctx, insertDelivery,
		pgtype.UUID{Bytes: d.ID, Valid: true},
		d.EventID,
		d.Level.String(),
		d.Provider,
		string(d.Status),
		d.StatusCode,
		d.Error,
		d.CreatedAt,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, repo.ErrDuplicateRecord
		}
		r.logger.Err(err).Str("event_id", d.EventID).Msg("cannot create delivery")
		return nil, fmt.Errorf("postgres: insert delivery failed: %w", err)
	}

	created := *d
	created.CreatedAt = createdAt.UTC()
	return &created, nil
}

// GetByEventID retrieves the delivery of an event.
func (r *DeliveryRepository) GetByEventID(ctx context.Context, eventID string) (*model.Delivery, error) {
	var row deliveryRow
	err := r.db.QueryRow(ctx, selectDeliveryByEventID, eventID).Scan(
		&row.ID, &row.EventID, &row.Level, &row.Provider, &row.Status,
		&row.StatusCode, &row.Error, &row.CreatedAt, &row.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		r.logger.Err(err).Str("event_id", eventID).Msg("cannot get delivery")
		return nil, fmt.Errorf("postgres: select delivery failed: %w", err)
	}

	return toDomainModel(&row)
}

// UpdateOutcome stores the result of a delivery.
func (r *DeliveryRepository) UpdateOutcome(ctx context.Context, d *model.Delivery) error {
	tag, err := r.db.Exec(ctx, updateDeliveryOutcome,
		d.EventID,
		string(d.Status),
		d.StatusCode,
		d.Error,
		d.CompletedAt,
	)
	if err != nil {
		r.logger.Err(err).Str("event_id", d.EventID).Msg("cannot update delivery")
		return fmt.Errorf("postgres: update delivery failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("event_id", d.EventID).Msg("tried to update non-existent delivery")
		return repo.ErrNotFound
	}
	return nil
}

// === Mapper Functions ===

// deliveryRow mirrors a row of the deliveries table.
type deliveryRow struct {
	ID          pgtype.UUID
	EventID     string
	Level       string
	Provider    string
	Status      string
	StatusCode  int32
	Error       pgtype.Text
	CreatedAt   time.Time
	CompletedAt pgtype.Timestamptz
}

// toDomainModel safely converts a database row to a domain model.
func toDomainModel(row *deliveryRow) (*model.Delivery, error) {
	if row == nil {
		return nil, errors.New("cannot convert nil delivery row")
	}
	level, err := model.ParseLevel(row.Level)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt level for event %s: %w", row.EventID, err)
	}
	d := &model.Delivery{
		ID:         row.ID.Bytes,
		EventID:    row.EventID,
		Level:      level,
		Provider:   row.Provider,
		Status:     model.Status(row.Status),
		StatusCode: int(row.StatusCode),
		CreatedAt:  row.CreatedAt.UTC(),
	}
	if row.Error.Valid {
		msg := row.Error.String
		d.Error = &msg
	}
	if row.CompletedAt.Valid {
		completed := row.CompletedAt.Time.UTC()
		d.CompletedAt = &completed
	}
	return d, nil
}
