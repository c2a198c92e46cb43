package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

const payoutColumns = `id, vendor_id, amount_cents, status, requested_at, processed_at, processed_by`

func scanPayout(row pgx.Row) (*domain.PayoutRequest, error) {
	p := &domain.PayoutRequest{}
	err := row.Scan(
		&p.ID, &p.VendorID, &p.AmountCents, &p.Status,
		&p.RequestedAt, &p.ProcessedAt, &p.ProcessedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a new payout request.
func (r *PayoutRepo) Create(ctx context.Context, p *domain.PayoutRequest) error {
	query := `INSERT INTO payout_requests (id, vendor_id, amount_cents, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.VendorID, p.AmountCents, p.Status, p.RequestedAt)
	if err != nil {
		return fmt.Errorf("insert payout request: %w", err)
	}
	return nil
}

// GetByID fetches a payout request by UUID (non-locking read).
func (r *PayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE id = $1`

	p, err := scanPayout(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payout by id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a payout request with pessimistic locking.
// This MUST be called within a transaction.
func (r *PayoutRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE id = $1 FOR UPDATE`

	p, err := scanPayout(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payout for update: %w", err)
	}
	return p, nil
}

// UpdateStatus advances a payout through its state machine within a
// database transaction.
func (r *PayoutRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus, processedBy *uuid.UUID, processedAt *time.Time) error {
	query := `UPDATE payout_requests SET status = $1, processed_by = $2, processed_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, status, processedBy, processedAt, id)
	if err != nil {
		return fmt.Errorf("update payout status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payout not found: %s", id)
	}
	return nil
}

// List fetches payout requests with filtering and pagination.
func (r *PayoutRepo) List(ctx context.Context, params ports.PayoutListParams) ([]domain.PayoutRequest, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "1=1")

	if params.VendorID != nil {
		conditions = append(conditions, fmt.Sprintf("vendor_id = $%d", argIdx))
		args = append(args, *params.VendorID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payout_requests %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+payoutColumns+` FROM payout_requests %s
		ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []domain.PayoutRequest
	for rows.Next() {
		p := domain.PayoutRequest{}
		err := rows.Scan(
			&p.ID, &p.VendorID, &p.AmountCents, &p.Status,
			&p.RequestedAt, &p.ProcessedAt, &p.ProcessedBy,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payout rows: %w", err)
	}
	return payouts, total, nil
}

// SumReserved totals payout amounts that still claim accrued revenue.
// Only REJECTED releases the claim.
func (r *PayoutRepo) SumReserved(ctx context.Context, vendorID uuid.UUID) (domain.Money, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payout_requests
		WHERE vendor_id = $1 AND status != 'REJECTED'`

	var sum domain.Money
	if err := r.pool.QueryRow(ctx, query, vendorID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum reserved payouts: %w", err)
	}
	return sum, nil
}
