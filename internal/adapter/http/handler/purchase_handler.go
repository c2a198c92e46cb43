package handler

import (
	"strconv"

	"ghostpass/internal/adapter/http/dto"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseHandler handles ticket sales and concession payments.
type PurchaseHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseSvc ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseSvc: purchaseSvc}
}

// PurchaseTicket handles POST /api/v1/purchases/ticket.
func (h *PurchaseHandler) PurchaseTicket(c *gin.Context) {
	var req dto.PurchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid event_id"))
		return
	}

	result, err := h.purchaseSvc.PurchaseTicket(c.Request.Context(), ports.TicketPurchaseRequest{
		BindingID: req.BindingID,
		EventID:   eventID,
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// VendorSpend handles POST /api/v1/purchases/spend.
func (h *PurchaseHandler) VendorSpend(c *gin.Context) {
	var req dto.VendorSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid vendor_id"))
		return
	}

	result, err := h.purchaseSvc.VendorSpend(c.Request.Context(), ports.VendorSpendRequest{
		BindingID: req.BindingID,
		VendorID:  vendorID,
		Amount:    domain.Money(req.AmountCents),
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// intQuery parses an int query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// totalPages computes page count for paginated responses.
func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
