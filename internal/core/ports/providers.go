package ports

import (
	"context"

	"ghostpass/internal/core/domain"
)

// PaymentProvider is the external checkout/capture service (Stripe-style).
// The ledger never credits a wallet from session creation alone; credits wait
// for the verified webhook confirmation.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	// VerifyWebhook authenticates a webhook delivery and decodes the event.
	VerifyWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// CheckoutSessionRequest asks the provider for a hosted payment page.
type CheckoutSessionRequest struct {
	BindingID   string
	AmountCents domain.Money
	Description string
}

// CheckoutSession is the provider's hosted session handle.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentEvent is a verified webhook event from the payment provider.
type PaymentEvent struct {
	Type        string       // e.g. "checkout.session.completed"
	SessionID   string
	BindingID   string       // from session metadata
	AmountTotal domain.Money
}

// IdentityVerifier is the external identity-verification service
// (Footprint-style). The core stores the session id/state and nothing more.
type IdentityVerifier interface {
	StartSession(ctx context.Context, bindingID string) (*VerificationSession, error)
	GetSession(ctx context.Context, sessionID string) (*VerificationSession, error)
}

// VerificationSession is the provider-side verification handle.
type VerificationSession struct {
	ID                   string `json:"id"`
	Status               string `json:"status"`
	RequiresManualReview bool   `json:"requires_manual_review"`
}

// Notifier delivers best-effort push notifications. Failures are logged and
// never fail the mutation that triggered them.
type Notifier interface {
	Push(ctx context.Context, n Notification) error
}

// Notification is a device-addressed push message.
type Notification struct {
	BindingID string `json:"binding_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}
