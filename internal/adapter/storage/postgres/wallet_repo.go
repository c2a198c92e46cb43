package postgres

import (
	"context"
	"errors"
	"fmt"

	"ghostpass/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, binding_id, owner_user_id, balance_cents, device_fingerprint, status, verification_id, verification_state, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.BindingID, &w.OwnerUserID, &w.BalanceCents, &w.DeviceFingerprint,
		&w.Status, &w.VerificationID, &w.VerificationState, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, binding_id, owner_user_id, balance_cents, device_fingerprint, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.BindingID, w.OwnerUserID, w.BalanceCents,
		w.DeviceFingerprint, w.Status, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByBindingID fetches a wallet by binding id (non-locking read).
func (r *WalletRepo) GetByBindingID(ctx context.Context, bindingID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE binding_id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, bindingID))
	if err != nil {
		return nil, fmt.Errorf("get wallet by binding id: %w", err)
	}
	return w, nil
}

// GetByFingerprint fetches a wallet by device fingerprint (non-locking read).
func (r *WalletRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE device_fingerprint = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, fingerprint))
	if err != nil {
		return nil, fmt.Errorf("get wallet by fingerprint: %w", err)
	}
	return w, nil
}

// GetByBindingIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByBindingIDForUpdate(ctx context.Context, tx pgx.Tx, bindingID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE binding_id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, bindingID))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance updates a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, bindingID string, balance domain.Money) error {
	query := `UPDATE wallets SET balance_cents = $1, updated_at = NOW() WHERE binding_id = $2`

	tag, err := tx.Exec(ctx, query, balance, bindingID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	return nil
}

// SetVerification records the provider-side verification session handle.
func (r *WalletRepo) SetVerification(ctx context.Context, bindingID, verificationID, state string) error {
	query := `UPDATE wallets SET verification_id = $1, verification_state = $2, updated_at = NOW() WHERE binding_id = $3`

	tag, err := r.pool.Exec(ctx, query, verificationID, state, bindingID)
	if err != nil {
		return fmt.Errorf("set wallet verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	return nil
}

// Deactivate flips a wallet to DEACTIVATED. Wallets are never deleted.
func (r *WalletRepo) Deactivate(ctx context.Context, bindingID string) error {
	query := `UPDATE wallets SET status = $1, updated_at = NOW() WHERE binding_id = $2`

	tag, err := r.pool.Exec(ctx, query, domain.WalletStatusDeactivated, bindingID)
	if err != nil {
		return fmt.Errorf("deactivate wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	return nil
}
