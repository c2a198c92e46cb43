package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PassRepo implements ports.PassRepository.
type PassRepo struct {
	pool Pool
}

// NewPassRepo creates a new PassRepo.
func NewPassRepo(pool Pool) *PassRepo {
	return &PassRepo{pool: pool}
}

const passColumns = `id, wallet_binding_id, event_id, status, valid_from, valid_until,
		entry_count, allows_reentry, last_entry_at, last_gateway_id, created_at, updated_at`

func scanPass(row pgx.Row) (*domain.GhostPass, error) {
	p := &domain.GhostPass{}
	err := row.Scan(
		&p.ID, &p.WalletBindingID, &p.EventID, &p.Status, &p.ValidFrom, &p.ValidUntil,
		&p.EntryCount, &p.AllowsReentry, &p.LastEntryAt, &p.LastGatewayID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a freshly minted pass within the purchase transaction.
func (r *PassRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.GhostPass) error {
	query := `INSERT INTO ghost_passes (id, wallet_binding_id, event_id, status, valid_from, valid_until,
		entry_count, allows_reentry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.WalletBindingID, p.EventID, p.Status, p.ValidFrom, p.ValidUntil,
		p.EntryCount, p.AllowsReentry, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// GetByID fetches a pass by UUID (non-locking read).
func (r *PassRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GhostPass, error) {
	query := `SELECT ` + passColumns + ` FROM ghost_passes WHERE id = $1`

	p, err := scanPass(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get pass by id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a pass with pessimistic locking. Two gates
// scanning the same pass serialize on this lock.
// This MUST be called within a transaction.
func (r *PassRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GhostPass, error) {
	query := `SELECT ` + passColumns + ` FROM ghost_passes WHERE id = $1 FOR UPDATE`

	p, err := scanPass(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get pass for update: %w", err)
	}
	return p, nil
}

// Update persists scan mutations within a database transaction.
func (r *PassRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.GhostPass) error {
	query := `UPDATE ghost_passes SET status = $1, entry_count = $2, last_entry_at = $3,
		last_gateway_id = $4, updated_at = $5 WHERE id = $6`

	tag, err := tx.Exec(ctx, query,
		p.Status, p.EntryCount, p.LastEntryAt, p.LastGatewayID, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update pass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pass not found: %s", p.ID)
	}
	return nil
}

// UpdateStatus flips a pass status outside of a scan (revocation).
func (r *PassRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PassStatus) error {
	query := `UPDATE ghost_passes SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update pass status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pass not found: %s", id)
	}
	return nil
}

// ListByWallet fetches all passes held by a wallet, newest first.
func (r *PassRepo) ListByWallet(ctx context.Context, bindingID string) ([]domain.GhostPass, error) {
	query := `SELECT ` + passColumns + ` FROM ghost_passes WHERE wallet_binding_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, bindingID)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []domain.GhostPass
	for rows.Next() {
		p := domain.GhostPass{}
		err := rows.Scan(
			&p.ID, &p.WalletBindingID, &p.EventID, &p.Status, &p.ValidFrom, &p.ValidUntil,
			&p.EntryCount, &p.AllowsReentry, &p.LastEntryAt, &p.LastGatewayID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pass row: %w", err)
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pass rows: %w", err)
	}
	return passes, nil
}

// ExpireOverdue flips ACTIVE passes whose validity window has closed.
func (r *PassRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE ghost_passes SET status = $1, updated_at = NOW()
		WHERE status = $2 AND valid_until < $3`

	tag, err := r.pool.Exec(ctx, query, domain.PassStatusExpired, domain.PassStatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("expire overdue passes: %w", err)
	}
	return tag.RowsAffected(), nil
}
