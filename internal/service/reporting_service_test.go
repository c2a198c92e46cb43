package service

import (
	"context"
	"testing"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/core/ports/mocks"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reportingTestDeps struct {
	svc          *ReportingServiceImpl
	ledgerRepo   *mocks.MockLedgerRepository
	walletRepo   *mocks.MockWalletRepository
	entryLogRepo *mocks.MockEntryLogRepository
	ctrl         *gomock.Controller
}

func setupReportingService(t *testing.T) *reportingTestDeps {
	ctrl := gomock.NewController(t)
	d := &reportingTestDeps{
		ledgerRepo:   mocks.NewMockLedgerRepository(ctrl),
		walletRepo:   mocks.NewMockWalletRepository(ctrl),
		entryLogRepo: mocks.NewMockEntryLogRepository(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewReportingService(d.ledgerRepo, d.walletRepo, d.entryLogRepo, zerolog.Nop())
	return d
}

func TestReportingService_FeeBreakdown(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	eventID := uuid.New()
	params := ports.FeeBreakdownParams{EventID: &eventID}

	d.ledgerRepo.EXPECT().FeeBreakdown(ctx, params).Return(domain.Split{
		domain.CategoryValid:  4000,
		domain.CategoryVendor: 3000,
	}, nil)

	split, err := d.svc.FeeBreakdown(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(7000), split.Total())
}

func TestReportingService_WalletStatement_DefaultsPagination(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.ledgerRepo.EXPECT().ListByWallet(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 20, params.PageSize)
			return []domain.LedgerEntry{}, 0, nil
		},
	)

	_, _, err := d.svc.WalletStatement(ctx, ports.LedgerListParams{BindingID: "wallet-1", Page: 0, PageSize: 5000})
	require.NoError(t, err)
}

func TestReportingService_DashboardStats_Periods(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.ledgerRepo.EXPECT().GetStats(ctx, nil, gomock.Not(gomock.Nil())).Return(&ports.LedgerStats{
		TotalEntries:  12,
		TicketRevenue: 120000,
	}, nil)
	d.entryLogRepo.EXPECT().CountAdmissions(ctx, nil, gomock.Not(gomock.Nil())).Return(int64(7), nil)

	stats, err := d.svc.DashboardStats(ctx, nil, "week")
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalEntries)
	assert.Equal(t, int64(7), stats.Admissions)

	// Empty period means all-time: no period-start filter.
	d.ledgerRepo.EXPECT().GetStats(ctx, nil, gomock.Nil()).Return(&ports.LedgerStats{}, nil)
	d.entryLogRepo.EXPECT().CountAdmissions(ctx, nil, gomock.Nil()).Return(int64(0), nil)
	_, err = d.svc.DashboardStats(ctx, nil, "")
	require.NoError(t, err)

	_, err = d.svc.DashboardStats(ctx, nil, "fortnight")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.Validation("").Code, appErr.Code)
}

func TestReportingService_WalletBalance(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.walletRepo.EXPECT().GetByBindingID(ctx, "wallet-1").Return(activeWallet("wallet-1", 4200), nil)

	balance, err := d.svc.WalletBalance(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(4200), balance)
}

func TestReportingService_WalletBalance_NotFound(t *testing.T) {
	d := setupReportingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.walletRepo.EXPECT().GetByBindingID(ctx, "missing").Return(nil, nil)

	_, err := d.svc.WalletBalance(ctx, "missing")
	assert.Error(t, err)
}
