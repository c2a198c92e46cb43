package service

import (
	"context"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportingServiceImpl implements ports.ReportingService (read path).
// Every number comes from aggregating committed ledger rows; there is no
// second source of truth to drift from.
type ReportingServiceImpl struct {
	ledgerRepo   ports.LedgerRepository
	walletRepo   ports.WalletRepository
	entryLogRepo ports.EntryLogRepository
	log          zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	ledgerRepo ports.LedgerRepository,
	walletRepo ports.WalletRepository,
	entryLogRepo ports.EntryLogRepository,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		ledgerRepo:   ledgerRepo,
		walletRepo:   walletRepo,
		entryLogRepo: entryLogRepo,
		log:          log,
	}
}

// FeeBreakdown aggregates committed FEE entries per category for the scope.
func (s *ReportingServiceImpl) FeeBreakdown(ctx context.Context, params ports.FeeBreakdownParams) (domain.Split, error) {
	split, err := s.ledgerRepo.FeeBreakdown(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("aggregate fee breakdown: %w", err))
	}
	return split, nil
}

// WalletStatement returns a page of a wallet's ledger history.
func (s *ReportingServiceImpl) WalletStatement(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	entries, total, err := s.ledgerRepo.ListByWallet(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, total, nil
}

// DashboardStats returns aggregate numbers for the dashboard. Period is one
// of "day", "week", "month" or empty for all-time.
func (s *ReportingServiceImpl) DashboardStats(ctx context.Context, venueID *uuid.UUID, period string) (*ports.LedgerStats, error) {
	var periodStart *time.Time
	now := time.Now().UTC()
	switch period {
	case "":
	case "day":
		t := now.AddDate(0, 0, -1)
		periodStart = &t
	case "week":
		t := now.AddDate(0, 0, -7)
		periodStart = &t
	case "month":
		t := now.AddDate(0, -1, 0)
		periodStart = &t
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown period %q", period))
	}

	stats, err := s.ledgerRepo.GetStats(ctx, venueID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("aggregate stats: %w", err))
	}

	admissions, err := s.entryLogRepo.CountAdmissions(ctx, venueID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count admissions: %w", err))
	}
	stats.Admissions = admissions

	return stats, nil
}

// WalletBalance returns the current balance for a binding id.
func (s *ReportingServiceImpl) WalletBalance(ctx context.Context, bindingID string) (domain.Money, error) {
	wallet, err := s.walletRepo.GetByBindingID(ctx, bindingID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}
	return wallet.BalanceCents, nil
}
