package handler

import (
	"time"

	"ghostpass/internal/adapter/http/middleware"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the reporting read path for staff accounts.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
	log          zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc, log: log}
}

// Stats handles GET /api/v1/dashboard/stats?period=week. Period is "day",
// "week", "month", or omitted for all-time. Venue accounts are always scoped
// to their own venue; admins may pass venue_id explicitly or omit it for a
// global view.
func (h *DashboardHandler) Stats(c *gin.Context) {
	venueID, err := scopeVenue(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period := c.Query("period")

	stats, err := h.reportingSvc.DashboardStats(c.Request.Context(), venueID, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, stats)
}

// FeeBreakdown handles GET /api/v1/dashboard/fees with optional event_id,
// from, and to (RFC 3339) filters.
func (h *DashboardHandler) FeeBreakdown(c *gin.Context) {
	var params ports.FeeBreakdownParams

	if v := c.Query("event_id"); v != "" {
		eventID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid event_id filter"))
			return
		}
		params.EventID = &eventID
	}

	var err error
	if params.From, err = timeQuery(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if params.To, err = timeQuery(c, "to"); err != nil {
		response.Error(c, err)
		return
	}

	split, err := h.reportingSvc.FeeBreakdown(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, split)
}

// scopeVenue resolves the venue filter for a dashboard query. Non-admin
// accounts cannot widen their scope past the venue on their token.
func scopeVenue(c *gin.Context) (*uuid.UUID, error) {
	role, _ := c.Get(middleware.CtxRole)
	if role == domain.RoleAdmin {
		if v := c.Query("venue_id"); v != "" {
			venueID, err := uuid.Parse(v)
			if err != nil {
				return nil, apperror.Validation("invalid venue_id filter")
			}
			return &venueID, nil
		}
		return nil, nil
	}

	val, ok := c.Get(middleware.CtxVenueID)
	if !ok {
		return nil, apperror.ErrForbiddenRole()
	}
	venueID, ok := val.(uuid.UUID)
	if !ok {
		return nil, apperror.ErrForbiddenRole()
	}
	return &venueID, nil
}

// timeQuery parses an optional RFC 3339 query parameter.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperror.Validation("invalid " + name + " timestamp, expected RFC 3339")
	}
	return &t, nil
}
