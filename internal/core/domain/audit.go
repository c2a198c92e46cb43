package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionRegister       AuditAction = "REGISTER"
	AuditActionTicketPurchase AuditAction = "TICKET_PURCHASE"
	AuditActionVendorSpend    AuditAction = "VENDOR_SPEND"
	AuditActionTopupCredit    AuditAction = "TOPUP_CREDIT"
	AuditActionPayoutRequest  AuditAction = "PAYOUT_REQUEST"
	AuditActionPayoutDecision AuditAction = "PAYOUT_DECISION"
	AuditActionProfileEdit    AuditAction = "PROFILE_EDIT"
	AuditActionEventEdit      AuditAction = "EVENT_EDIT"
	AuditActionPassRevoke     AuditAction = "PASS_REVOKE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      *uuid.UUID  `json:"actor_id,omitempty"` // staff account, nil for device calls
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
