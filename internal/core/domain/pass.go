package domain

import (
	"time"

	"github.com/google/uuid"
)

// PassStatus is the lifecycle state of a ghost pass. ACTIVE is the only
// admitting state; the rest are terminal for non-reentry passes.
type PassStatus string

const (
	PassStatusActive   PassStatus = "ACTIVE"
	PassStatusExpired  PassStatus = "EXPIRED"
	PassStatusRevoked  PassStatus = "REVOKED"
	PassStatusConsumed PassStatus = "CONSUMED"
)

// GhostPass is a time-bounded admission credential bound to a wallet.
// The pass ID doubles as the QR/NFC token presented at the gate.
type GhostPass struct {
	ID              uuid.UUID  `json:"id"`
	WalletBindingID string     `json:"wallet_binding_id"`
	EventID         uuid.UUID  `json:"event_id"`
	Status          PassStatus `json:"status"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidUntil      time.Time  `json:"valid_until"`
	EntryCount      int        `json:"entry_count"`
	AllowsReentry   bool       `json:"allows_reentry"`
	LastEntryAt     *time.Time `json:"last_entry_at,omitempty"`
	LastGatewayID   *string    `json:"last_gateway_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DenyReason is the machine-readable reason an admission was refused.
type DenyReason string

const (
	DenyPassNotFound    DenyReason = "pass_not_found"
	DenyPassNotActive   DenyReason = "pass_not_active"
	DenyVenueMismatch   DenyReason = "venue_mismatch"
	DenyEventNotActive  DenyReason = "event_not_active"
	DenyNotYetValid     DenyReason = "not_yet_valid"
	DenyExpired         DenyReason = "expired"
	DenyAlreadyConsumed DenyReason = "already_consumed"
	DenyDuplicateScan   DenyReason = "duplicate_scan"
)

// Decision is the outcome of an admission check. Denials are results, not
// errors: entry gates must distinguish "denied" from "unknown".
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

// Allow is the affirmative decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a refusal with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Allowed: false, Reason: reason} }

// CheckAdmission evaluates whether a presented pass grants entry at the given
// venue and instant. Stateless: the caller owns the entry-count mutation.
// The first failing check wins, in this order: pass missing, status not
// active, venue mismatch, event not active, before valid_from, after
// valid_until, already consumed without re-entry.
func CheckAdmission(pass *GhostPass, event *Event, venueID uuid.UUID, now time.Time) Decision {
	if pass == nil {
		return Deny(DenyPassNotFound)
	}
	if pass.Status != PassStatusActive {
		if pass.Status == PassStatusConsumed {
			return Deny(DenyAlreadyConsumed)
		}
		return Deny(DenyPassNotActive)
	}
	if event == nil || event.VenueID != venueID {
		return Deny(DenyVenueMismatch)
	}
	if !event.IsGateOpen() {
		return Deny(DenyEventNotActive)
	}
	if now.Before(pass.ValidFrom) {
		return Deny(DenyNotYetValid)
	}
	if now.After(pass.ValidUntil) {
		return Deny(DenyExpired)
	}
	if pass.EntryCount > 0 && !pass.AllowsReentry {
		return Deny(DenyAlreadyConsumed)
	}
	return Allow()
}

// RecordEntry applies a successful admission to the pass: increments the
// entry count, stamps the gateway, and consumes non-reentry passes.
func (p *GhostPass) RecordEntry(gatewayID string, now time.Time) {
	p.EntryCount++
	p.LastEntryAt = &now
	p.LastGatewayID = &gatewayID
	if !p.AllowsReentry {
		p.Status = PassStatusConsumed
	}
	p.UpdatedAt = now
}

// EntryLog is an append-only record of a successful admission.
type EntryLog struct {
	ID        uuid.UUID `json:"id"`
	PassID    uuid.UUID `json:"pass_id"`
	EventID   uuid.UUID `json:"event_id"`
	VenueID   uuid.UUID `json:"venue_id"`
	GatewayID string    `json:"gateway_id"`
	ScannedAt time.Time `json:"scanned_at"`
}
