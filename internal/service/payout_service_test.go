package service

import (
	"context"
	"testing"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports/mocks"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type payoutTestDeps struct {
	svc        *PayoutServiceImpl
	payoutRepo *mocks.MockPayoutRepository
	ledgerRepo *mocks.MockLedgerRepository
	staffRepo  *mocks.MockStaffRepository
	transactor *mocks.MockDBTransactor
	audit      *mocks.MockAuditService
	ctrl       *gomock.Controller
}

func setupPayoutService(t *testing.T) *payoutTestDeps {
	ctrl := gomock.NewController(t)
	d := &payoutTestDeps{
		payoutRepo: mocks.NewMockPayoutRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		staffRepo:  mocks.NewMockStaffRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		audit:      mocks.NewMockAuditService(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewPayoutService(
		d.payoutRepo, d.ledgerRepo, d.staffRepo, d.transactor, d.audit, zerolog.Nop(),
	)
	return d
}

func activeVendor(id uuid.UUID) *domain.StaffAccount {
	profileID := uuid.New()
	return &domain.StaffAccount{
		ID:               id,
		Role:             domain.RoleVendor,
		Status:           domain.StaffStatusActive,
		RevenueProfileID: &profileID,
	}
}

func TestPayoutService_Request_Success(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	vendorID := uuid.New()

	d.staffRepo.EXPECT().GetByID(ctx, vendorID).Return(activeVendor(vendorID), nil)
	d.ledgerRepo.EXPECT().VendorAccrued(ctx, vendorID).Return(domain.Money(10000), nil)
	d.payoutRepo.EXPECT().SumReserved(ctx, vendorID).Return(domain.Money(3000), nil)
	d.payoutRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.audit.EXPECT().Log(ctx, gomock.Any())

	payout, err := d.svc.Request(ctx, vendorID, 7000)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
	assert.Equal(t, domain.Money(7000), payout.AmountCents)
}

func TestPayoutService_Request_ExceedsAccrued(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	vendorID := uuid.New()

	d.staffRepo.EXPECT().GetByID(ctx, vendorID).Return(activeVendor(vendorID), nil)
	d.ledgerRepo.EXPECT().VendorAccrued(ctx, vendorID).Return(domain.Money(10000), nil)
	d.payoutRepo.EXPECT().SumReserved(ctx, vendorID).Return(domain.Money(3000), nil)

	_, err := d.svc.Request(ctx, vendorID, 7001)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrPayoutExceedsAccrued().Code, appErr.Code)
}

func TestPayoutService_Request_InvalidAmount(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Request(context.Background(), uuid.New(), 0)
	assert.Error(t, err)
}

func TestPayoutService_Decide_Approve(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	payoutID := uuid.New()
	adminID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().GetByIDForUpdate(ctx, tx, payoutID).Return(&domain.PayoutRequest{
		ID:     payoutID,
		Status: domain.PayoutStatusPending,
	}, nil)
	d.payoutRepo.EXPECT().UpdateStatus(ctx, tx, payoutID, domain.PayoutStatusApproved, gomock.Any(), gomock.Any()).Return(nil)
	d.audit.EXPECT().Log(ctx, gomock.Any())

	payout, err := d.svc.Decide(ctx, payoutID, adminID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusApproved, payout.Status)
	require.NotNil(t, payout.ProcessedBy)
	assert.Equal(t, adminID, *payout.ProcessedBy)
}

func TestPayoutService_Decide_AlreadyRejected(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	payoutID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().GetByIDForUpdate(ctx, tx, payoutID).Return(&domain.PayoutRequest{
		ID:     payoutID,
		Status: domain.PayoutStatusRejected,
	}, nil)

	_, err := d.svc.Decide(ctx, payoutID, uuid.New(), true)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrPayoutTransition("REJECTED", "APPROVED").Code, appErr.Code)
}

func TestPayoutService_Process_RequiresApproval(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	payoutID := uuid.New()

	// PENDING -> PROCESSED skips approval and must fail
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().GetByIDForUpdate(ctx, tx, payoutID).Return(&domain.PayoutRequest{
		ID:     payoutID,
		Status: domain.PayoutStatusPending,
	}, nil)

	_, err := d.svc.Process(ctx, payoutID, uuid.New())
	assert.Error(t, err)
}

func TestPayoutService_Process_Approved(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	payoutID := uuid.New()
	adminID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().GetByIDForUpdate(ctx, tx, payoutID).Return(&domain.PayoutRequest{
		ID:          payoutID,
		Status:      domain.PayoutStatusApproved,
		RequestedAt: time.Now().Add(-time.Hour),
	}, nil)
	d.payoutRepo.EXPECT().UpdateStatus(ctx, tx, payoutID, domain.PayoutStatusProcessed, gomock.Any(), gomock.Any()).Return(nil)
	d.audit.EXPECT().Log(ctx, gomock.Any())

	payout, err := d.svc.Process(ctx, payoutID, adminID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusProcessed, payout.Status)
}

func TestPayoutService_Available_ClampsAtZero(t *testing.T) {
	d := setupPayoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	vendorID := uuid.New()

	d.ledgerRepo.EXPECT().VendorAccrued(ctx, vendorID).Return(domain.Money(1000), nil)
	d.payoutRepo.EXPECT().SumReserved(ctx, vendorID).Return(domain.Money(1500), nil)

	available, err := d.svc.Available(ctx, vendorID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), available)
}
