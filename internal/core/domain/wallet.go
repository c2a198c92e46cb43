package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatus represents the lifecycle state of a wallet.
// Wallets are never deleted, only deactivated.
type WalletStatus string

const (
	WalletStatusActive      WalletStatus = "ACTIVE"
	WalletStatusDeactivated WalletStatus = "DEACTIVATED"
)

// Wallet is a device-bound anonymous wallet. BindingID is the stable
// identifier presented by the device; OwnerUserID stays nil for anonymous
// wallets until the holder completes identity verification.
type Wallet struct {
	ID                uuid.UUID    `json:"id"`
	BindingID         string       `json:"binding_id"`
	OwnerUserID       *uuid.UUID   `json:"owner_user_id,omitempty"`
	BalanceCents      Money        `json:"balance_cents"` // invariant: >= 0
	DeviceFingerprint string       `json:"-"`
	Status            WalletStatus `json:"status"`
	VerificationID    *string      `json:"verification_id,omitempty"`
	VerificationState *string      `json:"verification_state,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// IsActive returns true if the wallet can be mutated.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}
