package ports

import (
	"context"
	"time"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for dashboard accounts.
type TokenService interface {
	Generate(account *domain.StaffAccount) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.StaffRole
	VenueID   *uuid.UUID
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ScanGuard deduplicates gateway scan deliveries.
type ScanGuard interface {
	// FirstSeen atomically records a scan nonce. Returns true if this is the
	// first delivery, false if the same scan was already processed.
	FirstSeen(ctx context.Context, passID uuid.UUID, gatewayID, nonce string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService applies wallet balance mutations atomically.
type LedgerService interface {
	Apply(ctx context.Context, req ApplyRequest) (*domain.LedgerEntry, error)
	// ConfirmTopup credits a wallet exactly once per confirmed payment session.
	ConfirmTopup(ctx context.Context, sessionID, bindingID string, amount domain.Money) (*domain.LedgerEntry, error)
}

// ApplyRequest holds validated input for a ledger mutation.
type ApplyRequest struct {
	BindingID      string
	Delta          domain.Money // signed: credits positive, debits negative
	Type           domain.EntryType
	IdempotencyKey string // empty disables duplicate short-circuiting
	Metadata       map[string]string
}

// PurchaseService sells tickets and takes concession payments.
type PurchaseService interface {
	PurchaseTicket(ctx context.Context, req TicketPurchaseRequest) (*PurchaseResult, error)
	VendorSpend(ctx context.Context, req VendorSpendRequest) (*PurchaseResult, error)
}

// TicketPurchaseRequest holds validated input for a ticket purchase.
type TicketPurchaseRequest struct {
	BindingID string
	EventID   uuid.UUID
	Reference string // device-side purchase reference, idempotency scope
}

// VendorSpendRequest holds validated input for a concession payment.
type VendorSpendRequest struct {
	BindingID string
	VendorID  uuid.UUID
	Amount    domain.Money
	Reference string // terminal receipt reference, idempotency scope
}

// PurchaseResult bundles the ledger entry with the minted pass (nil for
// vendor spends) and the fee distribution applied.
type PurchaseResult struct {
	Entry *domain.LedgerEntry `json:"entry"`
	Pass  *domain.GhostPass   `json:"pass,omitempty"`
	Fees  domain.Split        `json:"fees"`
}

// AdmissionService decides and records entry scans.
type AdmissionService interface {
	Scan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

// ScanRequest holds validated input for a gateway scan.
type ScanRequest struct {
	PassID    uuid.UUID
	VenueID   uuid.UUID
	GatewayID string
	Nonce     string // unique per physical scan, replay guard scope
}

// ScanResult carries the admission decision. Denials are successful results.
type ScanResult struct {
	Decision   domain.Decision
	Pass       *domain.GhostPass // nil when the pass does not exist
	EntryCount int
}

// WalletService manages device binding and identity verification.
type WalletService interface {
	Bind(ctx context.Context, deviceFingerprint string) (*domain.Wallet, error)
	Get(ctx context.Context, bindingID string) (*domain.Wallet, error)
	StartVerification(ctx context.Context, bindingID string) (*VerificationSession, error)
	CreateTopupSession(ctx context.Context, bindingID string, amount domain.Money) (*CheckoutSession, error)
}

// PayoutService runs the vendor payout workflow.
type PayoutService interface {
	Request(ctx context.Context, vendorID uuid.UUID, amount domain.Money) (*domain.PayoutRequest, error)
	Decide(ctx context.Context, payoutID, adminID uuid.UUID, approve bool) (*domain.PayoutRequest, error)
	Process(ctx context.Context, payoutID, adminID uuid.UUID) (*domain.PayoutRequest, error)
	List(ctx context.Context, params PayoutListParams) ([]domain.PayoutRequest, int64, error)
	// Available returns accrued revenue not yet claimed by a payout.
	Available(ctx context.Context, vendorID uuid.UUID) (domain.Money, error)
}

// AuthService defines staff authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.StaffAccount, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for staff account registration.
type RegisterRequest struct {
	Username         string
	Password         string
	DisplayName      string
	Role             domain.StaffRole
	VenueID          *uuid.UUID
	RevenueProfileID *uuid.UUID
}

// ReportingService defines dashboard/reporting business logic (read path).
type ReportingService interface {
	FeeBreakdown(ctx context.Context, params FeeBreakdownParams) (domain.Split, error)
	WalletStatement(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	DashboardStats(ctx context.Context, venueID *uuid.UUID, period string) (*LedgerStats, error)
	WalletBalance(ctx context.Context, bindingID string) (domain.Money, error)
}

// VenueService administers events and revenue profiles.
type VenueService interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*domain.Event, error)
	SetEventStatus(ctx context.Context, eventID uuid.UUID, status domain.EventStatus) (*domain.Event, error)
	ListEvents(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error)
	CreateProfile(ctx context.Context, profile *domain.RevenueProfile) (*domain.RevenueProfile, error)
	UpdateProfile(ctx context.Context, profile *domain.RevenueProfile) (*domain.RevenueProfile, error)
	ListProfiles(ctx context.Context) ([]domain.RevenueProfile, error)
}

// CreateEventRequest holds validated input for event creation.
type CreateEventRequest struct {
	VenueID          uuid.UUID
	PromoterID       *uuid.UUID
	Name             string
	TicketPriceCents domain.Money
	RevenueProfileID uuid.UUID
	AllowsReentry    bool
	StartsAt         time.Time
	EndsAt           time.Time
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
