package handler

import (
	"ghostpass/internal/adapter/http/dto"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles device-facing wallet endpoints.
type WalletHandler struct {
	walletSvc    ports.WalletService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, reportingSvc: reportingSvc}
}

// Bind handles POST /api/v1/wallets/bind.
func (h *WalletHandler) Bind(c *gin.Context) {
	var req dto.BindWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.Bind(c.Request.Context(), req.DeviceFingerprint)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, wallet)
}

// Get handles GET /api/v1/wallets/:binding_id.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.walletSvc.Get(c.Request.Context(), c.Param("binding_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// Balance handles GET /api/v1/wallets/:binding_id/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	bindingID := c.Param("binding_id")
	balance, err := h.reportingSvc.WalletBalance(c.Request.Context(), bindingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{
		BindingID:    bindingID,
		BalanceCents: int64(balance),
	})
}

// Statement handles GET /api/v1/wallets/:binding_id/statement.
func (h *WalletHandler) Statement(c *gin.Context) {
	params := ports.LedgerListParams{
		BindingID: c.Param("binding_id"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
	}
	if t := c.Query("type"); t != "" {
		entryType := domain.EntryType(t)
		params.Type = &entryType
	}

	entries, total, err := h.reportingSvc.WalletStatement(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatementResponse{
		Items:      entries,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	})
}

// StartVerification handles POST /api/v1/wallets/:binding_id/verify.
func (h *WalletHandler) StartVerification(c *gin.Context) {
	session, err := h.walletSvc.StartVerification(c.Request.Context(), c.Param("binding_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// CreateTopupSession handles POST /api/v1/topups/session.
func (h *WalletHandler) CreateTopupSession(c *gin.Context) {
	var req dto.TopupSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.walletSvc.CreateTopupSession(c.Request.Context(), req.BindingID, domain.Money(req.AmountCents))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}
