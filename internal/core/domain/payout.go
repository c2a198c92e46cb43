package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is a one-way progression from PENDING to a terminal state.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusApproved  PayoutStatus = "APPROVED"
	PayoutStatusRejected  PayoutStatus = "REJECTED"
	PayoutStatusProcessed PayoutStatus = "PROCESSED"
)

// payoutTransitions enumerates the legal state machine edges.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:  {PayoutStatusApproved, PayoutStatusRejected},
	PayoutStatusApproved: {PayoutStatusProcessed},
}

// CanTransition reports whether a payout may move from its current status to
// the target status.
func (s PayoutStatus) CanTransition(to PayoutStatus) bool {
	for _, next := range payoutTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s PayoutStatus) IsTerminal() bool {
	return len(payoutTransitions[s]) == 0
}

// PayoutRequest is a vendor's request to withdraw accrued revenue.
type PayoutRequest struct {
	ID          uuid.UUID    `json:"id"`
	VendorID    uuid.UUID    `json:"vendor_id"`
	AmountCents Money        `json:"amount_cents"`
	Status      PayoutStatus `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID   `json:"processed_by,omitempty"`
}
