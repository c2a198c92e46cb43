package dto

// BindWalletRequest is the request body for device binding.
type BindWalletRequest struct {
	DeviceFingerprint string `json:"device_fingerprint" binding:"required,min=8,max=256"`
}

// TopupSessionRequest is the request body for creating a checkout session.
type TopupSessionRequest struct {
	BindingID   string `json:"binding_id" binding:"required,safe_id"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
}

// PurchaseTicketRequest is the request body for a ticket purchase.
type PurchaseTicketRequest struct {
	BindingID string `json:"binding_id" binding:"required,safe_id"`
	EventID   string `json:"event_id" binding:"required,uuid"`
	Reference string `json:"reference" binding:"required,max=100,safe_id"`
}

// VendorSpendRequest is the request body for a concession payment.
type VendorSpendRequest struct {
	BindingID   string `json:"binding_id" binding:"required,safe_id"`
	VendorID    string `json:"vendor_id" binding:"required,uuid"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Reference   string `json:"reference" binding:"required,max=100,safe_id"`
}

// ScanRequest is the request body for a gate scan.
type ScanRequest struct {
	PassID string `json:"pass_id" binding:"required,uuid"`
	Nonce  string `json:"nonce" binding:"omitempty,max=100,safe_id"`
}

// PayoutRequestBody is the request body for a vendor payout request.
type PayoutRequestBody struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

// PayoutDecisionRequest is the request body for an admin payout decision.
type PayoutDecisionRequest struct {
	Approve bool `json:"approve"`
}

// RegisterRequest is the request body for staff registration.
type RegisterRequest struct {
	Username         string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password         string  `json:"password" binding:"required,min=8,max=128"`
	DisplayName      string  `json:"display_name" binding:"required,min=1,max=100"`
	Role             string  `json:"role" binding:"required,oneof=ADMIN VENUE VENDOR"`
	VenueID          *string `json:"venue_id,omitempty" binding:"omitempty,uuid"`
	RevenueProfileID *string `json:"revenue_profile_id,omitempty" binding:"omitempty,uuid"`
}

// LoginRequest is the request body for staff login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateEventRequest is the request body for event creation.
type CreateEventRequest struct {
	Name             string  `json:"name" binding:"required,min=1,max=200"`
	PromoterID       *string `json:"promoter_id,omitempty" binding:"omitempty,uuid"`
	TicketPriceCents int64   `json:"ticket_price_cents" binding:"required,gt=0"`
	RevenueProfileID string  `json:"revenue_profile_id" binding:"required,uuid"`
	AllowsReentry    bool    `json:"allows_reentry"`
	StartsAt         string  `json:"starts_at" binding:"required"` // RFC 3339
	EndsAt           string  `json:"ends_at" binding:"required"`   // RFC 3339
}

// EventStatusRequest is the request body for event lifecycle changes.
type EventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ON_SALE ACTIVE CLOSED"`
}

// RevenueProfileRequest is the request body for profile create/update.
type RevenueProfileRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100"`
	ValidPct     float64 `json:"valid_pct" binding:"gte=0,lte=100"`
	VendorPct    float64 `json:"vendor_pct" binding:"gte=0,lte=100"`
	PoolPct      float64 `json:"pool_pct" binding:"gte=0,lte=100"`
	PromoterPct  float64 `json:"promoter_pct" binding:"gte=0,lte=100"`
	ExecutivePct float64 `json:"executive_pct" binding:"gte=0,lte=100"`
	Residual     string  `json:"residual" binding:"required,oneof=VALID VENDOR POOL PROMOTER EXECUTIVE"`
}

// BalanceResponse is the response for a wallet balance query.
type BalanceResponse struct {
	BindingID    string `json:"binding_id"`
	BalanceCents int64  `json:"balance_cents"`
}

// ScanResponse is the response for a gate scan. Denials are 200s.
type ScanResponse struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	EntryCount int    `json:"entry_count"`
	PassStatus string `json:"pass_status,omitempty"`
}

// StatementResponse wraps a paginated wallet statement.
type StatementResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// AvailableResponse reports a vendor's payout headroom.
type AvailableResponse struct {
	VendorID       string `json:"vendor_id"`
	AvailableCents int64  `json:"available_cents"`
}
