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

// LedgerRepo implements ports.LedgerRepository over the append-only
// ledger_entries table. Rows are only ever inserted.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

const ledgerColumns = `id, wallet_binding_id, type, amount_cents, balance_before_cents, balance_after_cents,
		category, recipient_id, idempotency_key, metadata, created_at`

// Insert appends a ledger entry within a database transaction.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.WalletBindingID, e.Type, e.AmountCents, e.BalanceBefore, e.BalanceAfter,
		e.Category, e.RecipientID, e.IdempotencyKey, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID.
func (r *LedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`

	return scanLedgerEntry(r.pool.QueryRow(ctx, query, id))
}

// ListByWallet fetches a wallet's ledger history with filtering and pagination.
func (r *LedgerRepo) ListByWallet(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("wallet_binding_id = $%d", argIdx))
	args = append(args, params.BindingID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_entries %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+ledgerColumns+` FROM ledger_entries %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.WalletBindingID, &e.Type, &e.AmountCents, &e.BalanceBefore, &e.BalanceAfter,
			&e.Category, &e.RecipientID, &e.IdempotencyKey, &e.Metadata, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, total, nil
}

// FeeBreakdown aggregates committed FEE entries per category for the scope.
func (r *LedgerRepo) FeeBreakdown(ctx context.Context, params ports.FeeBreakdownParams) (domain.Split, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "type = 'FEE'")

	if params.EventID != nil {
		conditions = append(conditions, fmt.Sprintf("metadata->>'event_id' = $%d", argIdx))
		args = append(args, params.EventID.String())
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
	}

	query := fmt.Sprintf(`SELECT category, COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries WHERE %s GROUP BY category`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate fee breakdown: %w", err)
	}
	defer rows.Close()

	split := domain.Split{}
	for rows.Next() {
		var category domain.ShareCategory
		var sum domain.Money
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, fmt.Errorf("scan fee breakdown row: %w", err)
		}
		split[category] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee breakdown rows: %w", err)
	}
	return split, nil
}

// VendorAccrued sums the FEE cuts attributed to a vendor.
func (r *LedgerRepo) VendorAccrued(ctx context.Context, vendorID uuid.UUID) (domain.Money, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries
		WHERE type = 'FEE' AND recipient_id = $1`

	var sum domain.Money
	if err := r.pool.QueryRow(ctx, query, vendorID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum vendor accrued: %w", err)
	}
	return sum, nil
}

// GetStats retrieves aggregated ledger statistics, optionally scoped to a
// venue (through the event recorded on each purchase) and a period start.
func (r *LedgerRepo) GetStats(ctx context.Context, venueID *uuid.UUID, periodStart *time.Time) (*ports.LedgerStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "1=1")

	if venueID != nil {
		conditions = append(conditions, fmt.Sprintf(`le.metadata->>'event_id' IN
			(SELECT id::text FROM events WHERE venue_id = $%d)`, argIdx))
		args = append(args, *venueID)
		argIdx++
	}
	if periodStart != nil {
		conditions = append(conditions, fmt.Sprintf("le.created_at >= $%d", argIdx))
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COALESCE(SUM(le.amount_cents) FILTER (WHERE le.type = 'CREDIT'), 0) AS credited,
		COALESCE(SUM(-le.amount_cents) FILTER (WHERE le.type IN ('DEBIT', 'TICKET_PURCHASE', 'VENDOR_SPEND')), 0) AS debited,
		COALESCE(SUM(-le.amount_cents) FILTER (WHERE le.type = 'TICKET_PURCHASE'), 0) AS ticket_revenue,
		COALESCE(SUM(-le.amount_cents) FILTER (WHERE le.type = 'VENDOR_SPEND'), 0) AS vendor_revenue,
		COALESCE(SUM(le.amount_cents) FILTER (WHERE le.type = 'FEE'), 0) AS fees
		FROM ledger_entries le WHERE %s`, strings.Join(conditions, " AND "))

	stats := &ports.LedgerStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalEntries, &stats.TotalCredited, &stats.TotalDebited,
		&stats.TicketRevenue, &stats.VendorRevenue, &stats.TotalFeeCents,
	)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	return stats, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.WalletBindingID, &e.Type, &e.AmountCents, &e.BalanceBefore, &e.BalanceAfter,
		&e.Category, &e.RecipientID, &e.IdempotencyKey, &e.Metadata, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}
