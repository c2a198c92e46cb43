package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EntryLogRepo implements ports.EntryLogRepository.
type EntryLogRepo struct {
	pool Pool
}

// NewEntryLogRepo creates a new EntryLogRepo.
func NewEntryLogRepo(pool Pool) *EntryLogRepo {
	return &EntryLogRepo{pool: pool}
}

// Insert records a gate admission within the scan transaction.
func (r *EntryLogRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.EntryLog) error {
	query := `INSERT INTO entry_logs (id, pass_id, event_id, venue_id, gateway_id, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, e.ID, e.PassID, e.EventID, e.VenueID, e.GatewayID, e.ScannedAt)
	if err != nil {
		return fmt.Errorf("insert entry log: %w", err)
	}
	return nil
}

// CountAdmissions returns the number of recorded admissions, optionally
// scoped to a venue and a period start.
func (r *EntryLogRepo) CountAdmissions(ctx context.Context, venueID *uuid.UUID, since *time.Time) (int64, error) {
	conditions := []string{"1=1"}
	var args []any
	argIdx := 1

	if venueID != nil {
		conditions = append(conditions, fmt.Sprintf("venue_id = $%d", argIdx))
		args = append(args, *venueID)
		argIdx++
	}
	if since != nil {
		conditions = append(conditions, fmt.Sprintf("scanned_at >= $%d", argIdx))
		args = append(args, *since)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM entry_logs WHERE %s`, strings.Join(conditions, " AND "))

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admissions: %w", err)
	}
	return count, nil
}
