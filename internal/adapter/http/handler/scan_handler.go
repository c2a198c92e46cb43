package handler

import (
	"ghostpass/internal/adapter/http/dto"
	"ghostpass/internal/adapter/http/middleware"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScanHandler handles gate admission scans. Runs behind GatewayAuth.
type ScanHandler struct {
	admissionSvc ports.AdmissionService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(admissionSvc ports.AdmissionService) *ScanHandler {
	return &ScanHandler{admissionSvc: admissionSvc}
}

// Scan handles POST /api/v1/scans. Denials come back as 200s with
// allowed=false so the gate can render the reason; only transport and
// auth failures are errors.
func (h *ScanHandler) Scan(c *gin.Context) {
	venueVal, ok := c.Get(middleware.CtxVenueID)
	if !ok {
		response.Error(c, apperror.ErrInvalidGatewayKey())
		return
	}
	gatewayVal, ok := c.Get(middleware.CtxGatewayID)
	if !ok {
		response.Error(c, apperror.ErrInvalidGatewayKey())
		return
	}

	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	passID, err := uuid.Parse(req.PassID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid pass_id"))
		return
	}

	result, err := h.admissionSvc.Scan(c.Request.Context(), ports.ScanRequest{
		PassID:    passID,
		VenueID:   venueVal.(uuid.UUID),
		GatewayID: gatewayVal.(string),
		Nonce:     req.Nonce,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ScanResponse{
		Allowed:    result.Decision.Allowed,
		Reason:     string(result.Decision.Reason),
		EntryCount: result.EntryCount,
	}
	if result.Pass != nil {
		resp.PassStatus = string(result.Pass.Status)
	}
	response.OK(c, resp)
}
