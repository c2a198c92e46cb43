package postgres

import (
	"context"
	"testing"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayout(vendorID uuid.UUID) *domain.PayoutRequest {
	return &domain.PayoutRequest{
		ID:          uuid.New(),
		VendorID:    vendorID,
		AmountCents: 10000,
		Status:      domain.PayoutStatusPending,
		RequestedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func payoutTestColumns() []string {
	return []string{"id", "vendor_id", "amount_cents", "status", "requested_at", "processed_at", "processed_by"}
}

func payoutRow(p *domain.PayoutRequest) *pgxmock.Rows {
	return pgxmock.NewRows(payoutTestColumns()).AddRow(
		p.ID, p.VendorID, p.AmountCents, p.Status, p.RequestedAt, p.ProcessedAt, p.ProcessedBy,
	)
}

func TestPayoutRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout(uuid.New())

	mock.ExpectExec("INSERT INTO payout_requests").
		WithArgs(p.ID, p.VendorID, p.AmountCents, p.Status, p.RequestedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM payout_requests WHERE id .+ FOR UPDATE").
		WithArgs(p.ID).
		WillReturnRows(payoutRow(p))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, domain.PayoutStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	payoutID := uuid.New()
	adminID := uuid.New()
	processedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests SET status").
		WithArgs(domain.PayoutStatusApproved, &adminID, &processedAt, payoutID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, payoutID, domain.PayoutStatusApproved, &adminID, &processedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	payoutID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests SET status").
		WithArgs(domain.PayoutStatusRejected, (*uuid.UUID)(nil), (*time.Time)(nil), payoutID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, payoutID, domain.PayoutStatusRejected, nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payout not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_List_ByVendor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	vendorID := uuid.New()
	p := newTestPayout(vendorID)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payout_requests").
		WithArgs(vendorID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM payout_requests .+ ORDER BY requested_at DESC").
		WithArgs(vendorID, 20, 0).
		WillReturnRows(payoutRow(p))

	payouts, total, err := repo.List(context.Background(), ports.PayoutListParams{
		VendorID: &vendorID,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, payouts, 1)
	assert.Equal(t, p.ID, payouts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_SumReserved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	vendorID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount_cents\\), 0\\) FROM payout_requests").
		WithArgs(vendorID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(domain.Money(3000)))

	sum, err := repo.SumReserved(context.Background(), vendorID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(3000), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
