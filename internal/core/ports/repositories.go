package ports

import (
	"context"
	"time"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// row locking — balance reads that precede a write must go through them.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByBindingID(ctx context.Context, bindingID string) (*domain.Wallet, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Wallet, error)
	GetByBindingIDForUpdate(ctx context.Context, tx pgx.Tx, bindingID string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, bindingID string, balance domain.Money) error
	SetVerification(ctx context.Context, bindingID string, verificationID, state string) error
	Deactivate(ctx context.Context, bindingID string) error
}

// LedgerRepository persists the append-only ledger.
type LedgerRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	ListByWallet(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	// FeeBreakdown aggregates committed FEE entries by category.
	FeeBreakdown(ctx context.Context, params FeeBreakdownParams) (domain.Split, error)
	// VendorAccrued sums FEE cuts recorded for the given recipient.
	VendorAccrued(ctx context.Context, vendorID uuid.UUID) (domain.Money, error)
	GetStats(ctx context.Context, venueID *uuid.UUID, periodStart *time.Time) (*LedgerStats, error)
}

// LedgerListParams holds filter + pagination for a wallet statement.
type LedgerListParams struct {
	BindingID string
	Type      *domain.EntryType
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// FeeBreakdownParams scope the fee-distribution report.
type FeeBreakdownParams struct {
	EventID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// LedgerStats holds aggregated numbers for the dashboard. Admissions is
// filled from the entry log, the rest from committed ledger rows.
type LedgerStats struct {
	TotalEntries  int64        `json:"total_entries"`
	TotalCredited domain.Money `json:"total_credited_cents"`
	TotalDebited  domain.Money `json:"total_debited_cents"` // sum of debit magnitudes
	TicketRevenue domain.Money `json:"ticket_revenue_cents"`
	VendorRevenue domain.Money `json:"vendor_revenue_cents"`
	TotalFeeCents domain.Money `json:"total_fee_cents"`
	Admissions    int64        `json:"admissions"`
}

// PassRepository defines persistence operations for ghost passes.
type PassRepository interface {
	Create(ctx context.Context, tx pgx.Tx, pass *domain.GhostPass) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GhostPass, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GhostPass, error)
	// Update persists scan mutations (entry count, status, last entry).
	Update(ctx context.Context, tx pgx.Tx, pass *domain.GhostPass) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PassStatus) error
	ListByWallet(ctx context.Context, bindingID string) ([]domain.GhostPass, error)
	// ExpireOverdue flips ACTIVE passes whose valid_until has passed.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// EntryLogRepository appends successful admission records.
type EntryLogRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, log *domain.EntryLog) error
	// CountAdmissions counts recorded admissions, optionally scoped to a
	// venue and a period start. Nil filters mean all venues / all time.
	CountAdmissions(ctx context.Context, venueID *uuid.UUID, since *time.Time) (int64, error)
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error)
}

// RevenueProfileRepository defines persistence for revenue profiles.
// Edits are audited by the caller; profiles referenced by committed entries
// keep their historical meaning through the entry's recorded amounts.
type RevenueProfileRepository interface {
	Create(ctx context.Context, profile *domain.RevenueProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RevenueProfile, error)
	Update(ctx context.Context, profile *domain.RevenueProfile) error
	List(ctx context.Context) ([]domain.RevenueProfile, error)
}

// StaffRepository defines persistence for staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, account *domain.StaffAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error)
}

// PayoutRepository defines persistence for payout requests.
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.PayoutRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus, processedBy *uuid.UUID, processedAt *time.Time) error
	List(ctx context.Context, params PayoutListParams) ([]domain.PayoutRequest, int64, error)
	// SumReserved totals payout amounts that already claim accrued revenue
	// (PENDING, APPROVED, PROCESSED).
	SumReserved(ctx context.Context, vendorID uuid.UUID) (domain.Money, error)
}

// PayoutListParams holds filter + pagination for payout listings.
type PayoutListParams struct {
	VendorID *uuid.UUID
	Status   *domain.PayoutStatus
	Page     int
	PageSize int
}

// IdempotencyRepository defines persistence for idempotency records (DB layer).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// AuditRepository appends audit log rows.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
