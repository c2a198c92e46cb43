package postgres

import (
	"context"
	"errors"
	"fmt"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EventRepo implements ports.EventRepository.
type EventRepo struct {
	pool Pool
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(pool Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

const eventColumns = `id, venue_id, promoter_id, name, status, ticket_price_cents,
		revenue_profile_id, allows_reentry, starts_at, ends_at, created_at, updated_at`

// Create inserts a new event.
func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.VenueID, e.PromoterID, e.Name, e.Status, e.TicketPriceCents,
		e.RevenueProfileID, e.AllowsReentry, e.StartsAt, e.EndsAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID fetches an event by UUID.
func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e := &domain.Event{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.VenueID, &e.PromoterID, &e.Name, &e.Status, &e.TicketPriceCents,
		&e.RevenueProfileID, &e.AllowsReentry, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return e, nil
}

// UpdateStatus advances an event through its lifecycle.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	return nil
}

// ListByVenue fetches a venue's events, soonest first.
func (r *EventRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE venue_id = $1 ORDER BY starts_at DESC`

	rows, err := r.pool.Query(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e := domain.Event{}
		err := rows.Scan(
			&e.ID, &e.VenueID, &e.PromoterID, &e.Name, &e.Status, &e.TicketPriceCents,
			&e.RevenueProfileID, &e.AllowsReentry, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}
