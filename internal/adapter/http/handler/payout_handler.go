package handler

import (
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

// PayoutHandler exposes the vendor payout workflow.
type PayoutHandler struct {
	payoutSvc ports.PayoutService
	log       zerolog.Logger
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutSvc ports.PayoutService, log zerolog.Logger) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc, log: log}
}

// Request handles POST /api/v1/payouts. The vendor identity comes from the
// authenticated account, never from the request body.
func (h *PayoutHandler) Request(c *gin.Context) {
	vendorID, err := accountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PayoutRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.payoutSvc.Request(c.Request.Context(), vendorID, domain.Money(req.AmountCents))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, payout)
}

// Decide handles POST /api/v1/payouts/:id/decide (approve or reject).
func (h *PayoutHandler) Decide(c *gin.Context) {
	adminID, err := accountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout id"))
		return
	}

	var req dto.PayoutDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.payoutSvc.Decide(c.Request.Context(), payoutID, adminID, req.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payout)
}

// Process handles POST /api/v1/payouts/:id/process.
func (h *PayoutHandler) Process(c *gin.Context) {
	adminID, err := accountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout id"))
		return
	}

	payout, err := h.payoutSvc.Process(c.Request.Context(), payoutID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payout)
}

// List handles GET /api/v1/payouts with optional status and vendor_id filters.
func (h *PayoutHandler) List(c *gin.Context) {
	params := ports.PayoutListParams{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	if s := c.Query("status"); s != "" {
		status := domain.PayoutStatus(s)
		switch status {
		case domain.PayoutStatusPending, domain.PayoutStatusApproved,
			domain.PayoutStatusRejected, domain.PayoutStatusProcessed:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("invalid payout status filter"))
			return
		}
	}

	if v := c.Query("vendor_id"); v != "" {
		vendorID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid vendor_id filter"))
			return
		}
		params.VendorID = &vendorID
	}

	// Vendors only ever see their own payouts.
	if role, ok := c.Get(middleware.CtxRole); ok && role == domain.RoleVendor {
		vendorID, err := accountID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		params.VendorID = &vendorID
	}

	payouts, total, err := h.payoutSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"items":       payouts,
		"total":       total,
		"page":        params.Page,
		"page_size":   params.PageSize,
		"total_pages": totalPages(total, params.PageSize),
	})
}

// Available handles GET /api/v1/payouts/available for the calling vendor.
func (h *PayoutHandler) Available(c *gin.Context) {
	vendorID, err := accountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	available, err := h.payoutSvc.Available(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AvailableResponse{
		VendorID:       vendorID.String(),
		AvailableCents: int64(available),
	})
}

// accountID pulls the authenticated account id set by the JWT middleware.
func accountID(c *gin.Context) (uuid.UUID, error) {
	val, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		return uuid.Nil, apperror.ErrInvalidToken()
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperror.ErrInvalidToken()
	}
	return id, nil
}
