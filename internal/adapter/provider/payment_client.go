package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"ghostpass/config"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
)

// PaymentClient implements ports.PaymentProvider against a hosted-checkout
// payment API. Sessions are created server-side; the wallet is only credited
// when the signed completion webhook arrives.
type PaymentClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	successURL    string
	cancelURL     string
	httpClient    *http.Client
}

// NewPaymentClient creates a payment provider client from config.
func NewPaymentClient(cfg config.PaymentProviderConfig) *PaymentClient {
	return &PaymentClient{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

type createSessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

// CreateCheckoutSession asks the provider for a hosted payment page. The
// wallet binding id rides in session metadata so the completion webhook can
// be routed back to the right wallet.
func (c *PaymentClient) CreateCheckoutSession(ctx context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	body, err := json.Marshal(createSessionRequest{
		AmountCents: int64(req.AmountCents),
		Currency:    "usd",
		Description: req.Description,
		SuccessURL:  c.successURL,
		CancelURL:   c.cancelURL,
		Metadata:    map[string]string{"binding_id": req.BindingID},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrPaymentProvider(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperror.ErrPaymentProvider(fmt.Errorf("checkout session: status %d", resp.StatusCode))
	}

	var session ports.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperror.ErrPaymentProvider(fmt.Errorf("decode checkout session: %w", err))
	}
	return &session, nil
}

type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		ID          string            `json:"id"`
		AmountTotal int64             `json:"amount_total"`
		Metadata    map[string]string `json:"metadata"`
	} `json:"data"`
}

// VerifyWebhook authenticates a webhook delivery with HMAC-SHA256 over the
// raw payload and decodes the event. Constant-time comparison guards against
// timing attacks.
func (c *PaymentClient) VerifyWebhook(payload []byte, signature string) (*ports.PaymentEvent, error) {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, apperror.ErrWebhookSignature()
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, apperror.ErrPaymentProvider(fmt.Errorf("decode webhook payload: %w", err))
	}

	return &ports.PaymentEvent{
		Type:        envelope.Type,
		SessionID:   envelope.Data.ID,
		BindingID:   envelope.Data.Metadata["binding_id"],
		AmountTotal: domain.Money(envelope.Data.AmountTotal),
	}, nil
}
