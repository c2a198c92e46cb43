package handler

import (
	"time"

	"ghostpass/internal/adapter/http/dto"
	"ghostpass/internal/adapter/http/middleware"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VenueHandler administers events and revenue profiles.
type VenueHandler struct {
	venueSvc ports.VenueService
	log      zerolog.Logger
}

// NewVenueHandler creates a new VenueHandler.
func NewVenueHandler(venueSvc ports.VenueService, log zerolog.Logger) *VenueHandler {
	return &VenueHandler{venueSvc: venueSvc, log: log}
}

// CreateEvent handles POST /api/v1/events. The venue comes from the caller's
// token, so a venue account can only create events for itself.
func (h *VenueHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	venueID, err := tokenVenueID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		response.Error(c, apperror.Validation("invalid starts_at, expected RFC 3339"))
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		response.Error(c, apperror.Validation("invalid ends_at, expected RFC 3339"))
		return
	}

	promoterID, err := parseOptionalUUID(req.PromoterID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid promoter_id"))
		return
	}

	profileID, err := uuid.Parse(req.RevenueProfileID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid revenue_profile_id"))
		return
	}

	event, err := h.venueSvc.CreateEvent(c.Request.Context(), ports.CreateEventRequest{
		VenueID:          venueID,
		PromoterID:       promoterID,
		Name:             req.Name,
		TicketPriceCents: domain.Money(req.TicketPriceCents),
		RevenueProfileID: profileID,
		AllowsReentry:    req.AllowsReentry,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// SetStatus handles PATCH /api/v1/events/:id/status.
func (h *VenueHandler) SetStatus(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid event id"))
		return
	}

	var req dto.EventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	event, err := h.venueSvc.SetEventStatus(c.Request.Context(), eventID, domain.EventStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, event)
}

// ListEvents handles GET /api/v1/events for the caller's venue.
func (h *VenueHandler) ListEvents(c *gin.Context) {
	venueID, err := tokenVenueID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, err := h.venueSvc.ListEvents(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, events)
}

// CreateProfile handles POST /api/v1/profiles.
func (h *VenueHandler) CreateProfile(c *gin.Context) {
	var req dto.RevenueProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	profile, err := h.venueSvc.CreateProfile(c.Request.Context(), profileFromRequest(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, profile)
}

// UpdateProfile handles PUT /api/v1/profiles/:id.
func (h *VenueHandler) UpdateProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid profile id"))
		return
	}

	var req dto.RevenueProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	profile := profileFromRequest(&req)
	profile.ID = profileID

	updated, err := h.venueSvc.UpdateProfile(c.Request.Context(), profile)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, updated)
}

// ListProfiles handles GET /api/v1/profiles.
func (h *VenueHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.venueSvc.ListProfiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profiles)
}

func profileFromRequest(req *dto.RevenueProfileRequest) *domain.RevenueProfile {
	return &domain.RevenueProfile{
		Name:         req.Name,
		ValidPct:     req.ValidPct,
		VendorPct:    req.VendorPct,
		PoolPct:      req.PoolPct,
		PromoterPct:  req.PromoterPct,
		ExecutivePct: req.ExecutivePct,
		Residual:     domain.ShareCategory(req.Residual),
	}
}

// tokenVenueID pulls the venue scope from the caller's JWT. Admin tokens have
// no venue, so admins pass the venue explicitly via X-Venue-ID.
func tokenVenueID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(middleware.CtxVenueID); ok {
		if venueID, ok := val.(uuid.UUID); ok {
			return venueID, nil
		}
	}
	if v := c.GetHeader(middleware.HeaderVenueID); v != "" {
		venueID, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, apperror.Validation("invalid X-Venue-ID header")
		}
		return venueID, nil
	}
	return uuid.Nil, apperror.Validation("no venue scope on this request")
}
