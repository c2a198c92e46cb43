package handler

import (
	"io"

	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderWebhookSignature carries the payment provider's HMAC signature.
const HeaderWebhookSignature = "X-Webhook-Signature"

// WebhookHandler receives payment provider callbacks.
type WebhookHandler struct {
	payment   ports.PaymentProvider
	ledgerSvc ports.LedgerService
	log       zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(payment ports.PaymentProvider, ledgerSvc ports.LedgerService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{payment: payment, ledgerSvc: ledgerSvc, log: log}
}

// PaymentWebhook handles POST /api/v1/webhooks/payment. The signature is
// verified against the raw body before anything is decoded; a re-delivered
// completion credits at most once (idempotency key = session id).
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read webhook body"))
		return
	}

	event, err := h.payment.VerifyWebhook(payload, c.GetHeader(HeaderWebhookSignature))
	if err != nil {
		response.Error(c, err)
		return
	}

	if event.Type != "checkout.session.completed" {
		// Acknowledge everything else so the provider stops retrying.
		h.log.Debug().Str("type", event.Type).Msg("ignoring payment webhook event")
		response.OK(c, gin.H{"received": true})
		return
	}

	entry, err := h.ledgerSvc.ConfirmTopup(c.Request.Context(), event.SessionID, event.BindingID, event.AmountTotal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, entry)
}
