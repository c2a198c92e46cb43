package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VenueServiceImpl implements ports.VenueService: event lifecycle and
// revenue-profile administration for the dashboard.
type VenueServiceImpl struct {
	eventRepo   ports.EventRepository
	profileRepo ports.RevenueProfileRepository
	audit       ports.AuditService
	log         zerolog.Logger
}

// NewVenueService creates a new VenueServiceImpl.
func NewVenueService(
	eventRepo ports.EventRepository,
	profileRepo ports.RevenueProfileRepository,
	audit ports.AuditService,
	log zerolog.Logger,
) *VenueServiceImpl {
	return &VenueServiceImpl{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
		audit:       audit,
		log:         log.With().Str("component", "venue_service").Logger(),
	}
}

// CreateEvent validates and persists a new event in DRAFT.
func (s *VenueServiceImpl) CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*domain.Event, error) {
	if req.Name == "" {
		return nil, apperror.Validation("event name is required")
	}
	if req.TicketPriceCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperror.Validation("event must end after it starts")
	}

	profile, err := s.profileRepo.GetByID(ctx, req.RevenueProfileID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("revenue profile")
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:               uuid.New(),
		VenueID:          req.VenueID,
		PromoterID:       req.PromoterID,
		Name:             req.Name,
		Status:           domain.EventStatusDraft,
		TicketPriceCents: req.TicketPriceCents,
		RevenueProfileID: req.RevenueProfileID,
		AllowsReentry:    req.AllowsReentry,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionEventEdit,
		ResourceType: "event",
		ResourceID:   event.ID.String(),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("event_id", event.ID.String()).
		Str("venue_id", event.VenueID.String()).
		Int64("ticket_price_cents", int64(event.TicketPriceCents)).
		Msg("Event created")

	return event, nil
}

// SetEventStatus moves an event through its lifecycle.
func (s *VenueServiceImpl) SetEventStatus(ctx context.Context, eventID uuid.UUID, status domain.EventStatus) (*domain.Event, error) {
	switch status {
	case domain.EventStatusDraft, domain.EventStatusOnSale, domain.EventStatusActive, domain.EventStatusClosed:
	default:
		return nil, apperror.Validation("unknown event status")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if event == nil {
		return nil, apperror.ErrNotFound("event")
	}

	if err := s.eventRepo.UpdateStatus(ctx, eventID, status); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	event.Status = status

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionEventEdit,
		ResourceType: "event",
		ResourceID:   eventID.String(),
		Details:      fmt.Sprintf(`{"status":%q}`, status),
		CreatedAt:    time.Now().UTC(),
	})

	s.log.Info().
		Str("event_id", eventID.String()).
		Str("status", string(status)).
		Msg("Event status updated")

	return event, nil
}

// ListEvents returns all events for a venue, newest first.
func (s *VenueServiceImpl) ListEvents(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error) {
	events, err := s.eventRepo.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return events, nil
}

// CreateProfile validates and persists a revenue split configuration.
func (s *VenueServiceImpl) CreateProfile(ctx context.Context, profile *domain.RevenueProfile) (*domain.RevenueProfile, error) {
	if profile.Name == "" {
		return nil, apperror.Validation("profile name is required")
	}
	if err := s.validateShares(profile); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile.ID = uuid.New()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionProfileEdit,
		ResourceType: "revenue_profile",
		ResourceID:   profile.ID.String(),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("profile_id", profile.ID.String()).
		Str("name", profile.Name).
		Msg("Revenue profile created")

	return profile, nil
}

// UpdateProfile replaces an existing profile's shares. Committed ledger
// entries keep their historical amounts; only future splits change.
func (s *VenueServiceImpl) UpdateProfile(ctx context.Context, profile *domain.RevenueProfile) (*domain.RevenueProfile, error) {
	if err := s.validateShares(profile); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetByID(ctx, profile.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if existing == nil {
		return nil, apperror.ErrNotFound("revenue profile")
	}

	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now().UTC()
	if profile.Name == "" {
		profile.Name = existing.Name
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionProfileEdit,
		ResourceType: "revenue_profile",
		ResourceID:   profile.ID.String(),
		CreatedAt:    profile.UpdatedAt,
	})

	s.log.Info().
		Str("profile_id", profile.ID.String()).
		Msg("Revenue profile updated")

	return profile, nil
}

// ListProfiles returns every configured revenue profile.
func (s *VenueServiceImpl) ListProfiles(ctx context.Context) ([]domain.RevenueProfile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return profiles, nil
}

func (s *VenueServiceImpl) validateShares(profile *domain.RevenueProfile) error {
	if err := profile.Validate(); err != nil {
		var sumErr domain.ErrShareSum
		if errors.As(err, &sumErr) {
			return apperror.ErrSharesSum(sumErr.Sum)
		}
		return apperror.Validation(err.Error())
	}
	return nil
}
