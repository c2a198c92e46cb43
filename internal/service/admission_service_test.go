package service

import (
	"context"
	"testing"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type admissionTestDeps struct {
	svc          *AdmissionServiceImpl
	passRepo     *mocks.MockPassRepository
	eventRepo    *mocks.MockEventRepository
	entryLogRepo *mocks.MockEntryLogRepository
	scanGuard    *mocks.MockScanGuard
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupAdmissionService(t *testing.T) *admissionTestDeps {
	ctrl := gomock.NewController(t)
	d := &admissionTestDeps{
		passRepo:     mocks.NewMockPassRepository(ctrl),
		eventRepo:    mocks.NewMockEventRepository(ctrl),
		entryLogRepo: mocks.NewMockEntryLogRepository(ctrl),
		scanGuard:    mocks.NewMockScanGuard(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewAdmissionService(
		d.passRepo, d.eventRepo, d.entryLogRepo, d.scanGuard, d.transactor, zerolog.Nop(),
	)
	return d
}

func gateFixture() (*domain.GhostPass, *domain.Event) {
	now := time.Now().UTC()
	event := &domain.Event{
		ID:       uuid.New(),
		VenueID:  uuid.New(),
		Status:   domain.EventStatusActive,
		StartsAt: now.Add(-1 * time.Hour),
		EndsAt:   now.Add(4 * time.Hour),
	}
	pass := &domain.GhostPass{
		ID:              uuid.New(),
		WalletBindingID: "wallet-1",
		EventID:         event.ID,
		Status:          domain.PassStatusActive,
		ValidFrom:       now.Add(-1 * time.Hour),
		ValidUntil:      now.Add(4 * time.Hour),
		AllowsReentry:   false,
	}
	return pass, event
}

func TestAdmissionService_Scan_Allowed(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	pass, event := gateFixture()

	d.scanGuard.EXPECT().FirstSeen(ctx, pass.ID, "gate-1", "nonce-1", scanNonceTTL).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, pass.ID).Return(pass, nil)
	d.eventRepo.EXPECT().GetByID(ctx, pass.EventID).Return(event, nil)
	d.passRepo.EXPECT().Update(ctx, tx, pass).Return(nil)
	d.entryLogRepo.EXPECT().Insert(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, log *domain.EntryLog) error {
			assert.Equal(t, pass.ID, log.PassID)
			assert.Equal(t, "gate-1", log.GatewayID)
			return nil
		},
	)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: pass.ID, VenueID: event.VenueID, GatewayID: "gate-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)
	assert.True(t, result.Decision.Allowed)
	assert.Equal(t, 1, result.EntryCount)
	assert.Equal(t, domain.PassStatusConsumed, result.Pass.Status, "single-entry pass is consumed on first scan")
}

func TestAdmissionService_Scan_DuplicateNonce(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	passID := uuid.New()

	// Second delivery of the same physical scan: no tx at all
	d.scanGuard.EXPECT().FirstSeen(ctx, passID, "gate-1", "nonce-1", scanNonceTTL).Return(false, nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: passID, VenueID: uuid.New(), GatewayID: "gate-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)
	assert.False(t, result.Decision.Allowed)
	assert.Equal(t, domain.DenyDuplicateScan, result.Decision.Reason)
}

func TestAdmissionService_Scan_PassNotFound(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	passID := uuid.New()

	d.scanGuard.EXPECT().FirstSeen(ctx, passID, "gate-1", "nonce-2", scanNonceTTL).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, passID).Return(nil, nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: passID, VenueID: uuid.New(), GatewayID: "gate-1", Nonce: "nonce-2",
	})
	require.NoError(t, err, "unknown pass is a denial, not an error")
	assert.False(t, result.Decision.Allowed)
	assert.Equal(t, domain.DenyPassNotFound, result.Decision.Reason)
	assert.Nil(t, result.Pass)
}

func TestAdmissionService_Scan_ConsumedPass(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	pass, event := gateFixture()
	pass.Status = domain.PassStatusConsumed
	pass.EntryCount = 1

	d.scanGuard.EXPECT().FirstSeen(ctx, pass.ID, "gate-1", "nonce-3", scanNonceTTL).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, pass.ID).Return(pass, nil)
	d.eventRepo.EXPECT().GetByID(ctx, pass.EventID).Return(event, nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: pass.ID, VenueID: event.VenueID, GatewayID: "gate-1", Nonce: "nonce-3",
	})
	require.NoError(t, err)
	assert.False(t, result.Decision.Allowed)
	assert.Equal(t, domain.DenyAlreadyConsumed, result.Decision.Reason)
	assert.Equal(t, 1, result.EntryCount)
}

func TestAdmissionService_Scan_VenueMismatch(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	pass, event := gateFixture()

	d.scanGuard.EXPECT().FirstSeen(ctx, pass.ID, "gate-9", "nonce-4", scanNonceTTL).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, pass.ID).Return(pass, nil)
	d.eventRepo.EXPECT().GetByID(ctx, pass.EventID).Return(event, nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: pass.ID, VenueID: uuid.New(), GatewayID: "gate-9", Nonce: "nonce-4",
	})
	require.NoError(t, err)
	assert.False(t, result.Decision.Allowed)
	assert.Equal(t, domain.DenyVenueMismatch, result.Decision.Reason)
}

func TestAdmissionService_Scan_ReentryPass(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	pass, event := gateFixture()
	pass.AllowsReentry = true
	pass.EntryCount = 2

	d.scanGuard.EXPECT().FirstSeen(ctx, pass.ID, "gate-1", "nonce-5", scanNonceTTL).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, pass.ID).Return(pass, nil)
	d.eventRepo.EXPECT().GetByID(ctx, pass.EventID).Return(event, nil)
	d.passRepo.EXPECT().Update(ctx, tx, pass).Return(nil)
	d.entryLogRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: pass.ID, VenueID: event.VenueID, GatewayID: "gate-1", Nonce: "nonce-5",
	})
	require.NoError(t, err)
	assert.True(t, result.Decision.Allowed)
	assert.Equal(t, 3, result.EntryCount)
	assert.Equal(t, domain.PassStatusActive, result.Pass.Status, "re-entry pass stays active")
}

func TestAdmissionService_Scan_GuardUnavailableStillScans(t *testing.T) {
	d := setupAdmissionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	pass, event := gateFixture()

	// A Redis outage must not close the doors.
	d.scanGuard.EXPECT().FirstSeen(ctx, pass.ID, "gate-1", "nonce-6", scanNonceTTL).
		Return(false, assert.AnError)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.passRepo.EXPECT().GetByIDForUpdate(ctx, tx, pass.ID).Return(pass, nil)
	d.eventRepo.EXPECT().GetByID(ctx, pass.EventID).Return(event, nil)
	d.passRepo.EXPECT().Update(ctx, tx, pass).Return(nil)
	d.entryLogRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Scan(ctx, ports.ScanRequest{
		PassID: pass.ID, VenueID: event.VenueID, GatewayID: "gate-1", Nonce: "nonce-6",
	})
	require.NoError(t, err)
	assert.True(t, result.Decision.Allowed)
}
