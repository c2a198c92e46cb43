package service

import (
	"context"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/metrics"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl implements ports.PayoutService. Accrued revenue is an
// aggregate over committed FEE entries; reserving it for a payout never
// mutates the ledger, it only narrows what Available reports.
type PayoutServiceImpl struct {
	payoutRepo ports.PayoutRepository
	ledgerRepo ports.LedgerRepository
	staffRepo  ports.StaffRepository
	transactor ports.DBTransactor
	audit      ports.AuditService
	log        zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	payoutRepo ports.PayoutRepository,
	ledgerRepo ports.LedgerRepository,
	staffRepo ports.StaffRepository,
	transactor ports.DBTransactor,
	audit ports.AuditService,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		payoutRepo: payoutRepo,
		ledgerRepo: ledgerRepo,
		staffRepo:  staffRepo,
		transactor: transactor,
		audit:      audit,
		log:        log,
	}
}

// Request opens a payout for accrued vendor revenue. The amount must fit in
// what is accrued minus what earlier, still-live payouts already claim.
func (s *PayoutServiceImpl) Request(ctx context.Context, vendorID uuid.UUID, amount domain.Money) (*domain.PayoutRequest, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	vendor, err := s.staffRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load vendor: %w", err))
	}
	if vendor == nil || vendor.Role != domain.RoleVendor || !vendor.IsActive() {
		return nil, apperror.ErrNotFound("vendor")
	}

	available, err := s.Available(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if amount > available {
		return nil, apperror.ErrPayoutExceedsAccrued()
	}

	payout := &domain.PayoutRequest{
		ID:          uuid.New(),
		VendorID:    vendorID,
		AmountCents: amount,
		Status:      domain.PayoutStatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      &vendorID,
		Action:       domain.AuditActionPayoutRequest,
		ResourceType: "payout",
		ResourceID:   payout.ID.String(),
		CreatedAt:    payout.RequestedAt,
	})

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("vendor_id", vendorID.String()).
		Int64("amount_cents", int64(amount)).
		Msg("payout requested")

	return payout, nil
}

// Decide approves or rejects a pending payout.
func (s *PayoutServiceImpl) Decide(ctx context.Context, payoutID, adminID uuid.UUID, approve bool) (*domain.PayoutRequest, error) {
	target := domain.PayoutStatusRejected
	if approve {
		target = domain.PayoutStatusApproved
	}
	return s.transition(ctx, payoutID, adminID, target)
}

// Process marks an approved payout as paid out.
func (s *PayoutServiceImpl) Process(ctx context.Context, payoutID, adminID uuid.UUID) (*domain.PayoutRequest, error) {
	return s.transition(ctx, payoutID, adminID, domain.PayoutStatusProcessed)
}

// transition moves a payout through its state machine under a row lock, so
// two admins deciding the same payout concurrently cannot both win.
func (s *PayoutServiceImpl) transition(ctx context.Context, payoutID, adminID uuid.UUID, target domain.PayoutStatus) (*domain.PayoutRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payout, err := s.payoutRepo.GetByIDForUpdate(ctx, dbTx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if !payout.Status.CanTransition(target) {
		return nil, apperror.ErrPayoutTransition(string(payout.Status), string(target))
	}

	now := time.Now().UTC()
	if err := s.payoutRepo.UpdateStatus(ctx, dbTx, payoutID, target, &adminID, &now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	payout.Status = target
	payout.ProcessedBy = &adminID
	payout.ProcessedAt = &now

	metrics.PayoutDecisions.WithLabelValues(string(target)).Inc()

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      &adminID,
		Action:       domain.AuditActionPayoutDecision,
		ResourceType: "payout",
		ResourceID:   payoutID.String(),
		Details:      fmt.Sprintf(`{"status":%q}`, target),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("payout_id", payoutID.String()).
		Str("status", string(target)).
		Str("admin_id", adminID.String()).
		Msg("payout transitioned")

	return payout, nil
}

// List returns payouts matching the filter.
func (s *PayoutServiceImpl) List(ctx context.Context, params ports.PayoutListParams) ([]domain.PayoutRequest, int64, error) {
	payouts, total, err := s.payoutRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, total, nil
}

// Available returns accrued vendor revenue not yet claimed by a payout.
// Rejected payouts release their claim; pending, approved and processed
// payouts hold it.
func (s *PayoutServiceImpl) Available(ctx context.Context, vendorID uuid.UUID) (domain.Money, error) {
	accrued, err := s.ledgerRepo.VendorAccrued(ctx, vendorID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum accrued revenue: %w", err))
	}
	reserved, err := s.payoutRepo.SumReserved(ctx, vendorID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum reserved payouts: %w", err))
	}
	available := accrued - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}
