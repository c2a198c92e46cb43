package service

import (
	"context"
	"testing"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/core/ports/mocks"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type venueTestDeps struct {
	eventRepo   *mocks.MockEventRepository
	profileRepo *mocks.MockRevenueProfileRepository
	audit       *mocks.MockAuditService
}

func setupVenueService(t *testing.T) (*VenueServiceImpl, venueTestDeps) {
	ctrl := gomock.NewController(t)
	deps := venueTestDeps{
		eventRepo:   mocks.NewMockEventRepository(ctrl),
		profileRepo: mocks.NewMockRevenueProfileRepository(ctrl),
		audit:       mocks.NewMockAuditService(ctrl),
	}
	svc := NewVenueService(deps.eventRepo, deps.profileRepo, deps.audit, newTestLogger())
	return svc, deps
}

func validEventRequest(profileID uuid.UUID) ports.CreateEventRequest {
	return ports.CreateEventRequest{
		VenueID:          uuid.New(),
		Name:             "Warehouse Night",
		TicketPriceCents: 10000,
		RevenueProfileID: profileID,
		StartsAt:         time.Now().Add(24 * time.Hour),
		EndsAt:           time.Now().Add(30 * time.Hour),
	}
}

func TestVenueService_CreateEvent_Success(t *testing.T) {
	svc, deps := setupVenueService(t)
	profile := testProfile()
	req := validEventRequest(profile.ID)

	deps.profileRepo.EXPECT().GetByID(gomock.Any(), profile.ID).Return(profile, nil)
	deps.eventRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	event, err := svc.CreateEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusDraft, event.Status)
	assert.Equal(t, req.Name, event.Name)
	assert.EqualValues(t, 10000, event.TicketPriceCents)
}

func TestVenueService_CreateEvent_ProfileNotFound(t *testing.T) {
	svc, deps := setupVenueService(t)
	req := validEventRequest(uuid.New())

	deps.profileRepo.EXPECT().GetByID(gomock.Any(), req.RevenueProfileID).Return(nil, nil)

	_, err := svc.CreateEvent(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestVenueService_CreateEvent_BadWindow(t *testing.T) {
	svc, _ := setupVenueService(t)
	req := validEventRequest(uuid.New())
	req.EndsAt = req.StartsAt

	_, err := svc.CreateEvent(context.Background(), req)
	assert.Error(t, err)
}

func TestVenueService_SetEventStatus(t *testing.T) {
	svc, deps := setupVenueService(t)
	profile := testProfile()
	event := testEvent(profile.ID)

	deps.eventRepo.EXPECT().GetByID(gomock.Any(), event.ID).Return(event, nil)
	deps.eventRepo.EXPECT().UpdateStatus(gomock.Any(), event.ID, domain.EventStatusActive).Return(nil)
	deps.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	updated, err := svc.SetEventStatus(context.Background(), event.ID, domain.EventStatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusActive, updated.Status)
}

func TestVenueService_SetEventStatus_UnknownStatus(t *testing.T) {
	svc, _ := setupVenueService(t)

	_, err := svc.SetEventStatus(context.Background(), uuid.New(), domain.EventStatus("BOGUS"))
	assert.Error(t, err)
}

func TestVenueService_CreateProfile_Success(t *testing.T) {
	svc, deps := setupVenueService(t)
	profile := testProfile()
	profile.ID = uuid.Nil

	deps.profileRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	created, err := svc.CreateProfile(context.Background(), profile)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestVenueService_CreateProfile_SharesSumRejected(t *testing.T) {
	svc, _ := setupVenueService(t)
	profile := testProfile()
	profile.PoolPct = 30 // sum now 110

	_, err := svc.CreateProfile(context.Background(), profile)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestVenueService_UpdateProfile_NotFound(t *testing.T) {
	svc, deps := setupVenueService(t)
	profile := testProfile()

	deps.profileRepo.EXPECT().GetByID(gomock.Any(), profile.ID).Return(nil, nil)

	_, err := svc.UpdateProfile(context.Background(), profile)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestVenueService_UpdateProfile_Success(t *testing.T) {
	svc, deps := setupVenueService(t)
	profile := testProfile()

	deps.profileRepo.EXPECT().GetByID(gomock.Any(), profile.ID).Return(profile, nil)
	deps.profileRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	deps.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	updated, err := svc.UpdateProfile(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, updated.ID)
}
