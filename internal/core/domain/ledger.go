package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeCredit         EntryType = "CREDIT"
	EntryTypeDebit          EntryType = "DEBIT"
	EntryTypeTicketPurchase EntryType = "TICKET_PURCHASE"
	EntryTypeVendorSpend    EntryType = "VENDOR_SPEND"
	EntryTypeFee            EntryType = "FEE"
)

// MutatesBalance reports whether entries of this type move the wallet balance.
// FEE entries are distribution records carved out of an already-applied debit;
// they carry the category cut but leave the balance untouched.
func (t EntryType) MutatesBalance() bool {
	return t != EntryTypeFee
}

// LedgerEntry is an immutable, append-only record of a single ledger event.
// For balance-mutating types AmountCents is the signed delta applied to the
// wallet; for FEE entries it is the positive category cut.
type LedgerEntry struct {
	ID              uuid.UUID         `json:"id"`
	WalletBindingID string            `json:"wallet_binding_id"`
	Type            EntryType         `json:"type"`
	AmountCents     Money             `json:"amount_cents"`
	BalanceBefore   Money             `json:"balance_before_cents"`
	BalanceAfter    Money             `json:"balance_after_cents"`
	Category        *ShareCategory    `json:"category,omitempty"`     // FEE entries only
	RecipientID     *uuid.UUID        `json:"recipient_id,omitempty"` // FEE entries only
	IdempotencyKey  *string           `json:"idempotency_key,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewLedgerEntry builds a balance-mutating entry and enforces the ledger
// invariant balance_after == balance_before + delta with balance_after >= 0.
func NewLedgerEntry(bindingID string, typ EntryType, delta, before Money) (*LedgerEntry, error) {
	if !typ.MutatesBalance() {
		return nil, fmt.Errorf("entry type %s does not mutate the balance", typ)
	}
	after := before + delta
	if after < 0 {
		return nil, fmt.Errorf("entry would drive balance negative: %d%+d", before, delta)
	}
	return &LedgerEntry{
		ID:              uuid.New(),
		WalletBindingID: bindingID,
		Type:            typ,
		AmountCents:     delta,
		BalanceBefore:   before,
		BalanceAfter:    after,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// NewFeeEntry builds a FEE distribution record attached to the paying wallet.
// Fee entries carry no balance delta: before == after.
func NewFeeEntry(bindingID string, cut Money, category ShareCategory, recipientID *uuid.UUID, balance Money) *LedgerEntry {
	return &LedgerEntry{
		ID:              uuid.New(),
		WalletBindingID: bindingID,
		Type:            EntryTypeFee,
		AmountCents:     cut,
		BalanceBefore:   balance,
		BalanceAfter:    balance,
		Category:        &category,
		RecipientID:     recipientID,
		CreatedAt:       time.Now().UTC(),
	}
}

// TopupIdempotencyKey keys a wallet credit by the payment provider session id
// so a re-delivered confirmation never credits twice.
func TopupIdempotencyKey(sessionID string) string {
	return "topup:" + sessionID
}

// PurchaseIdempotencyKey keys a ticket purchase by the caller's reference.
func PurchaseIdempotencyKey(bindingID, reference string) string {
	return "purchase:" + bindingID + ":" + reference
}

// SpendIdempotencyKey keys a vendor concession payment by the terminal reference.
func SpendIdempotencyKey(bindingID, reference string) string {
	return "spend:" + bindingID + ":" + reference
}

// IdempotencyRecord caches the outcome of an applied mutation so repeated
// delivery of the same request short-circuits to the original result.
type IdempotencyRecord struct {
	Key          string    `json:"key"`
	EntryID      uuid.UUID `json:"entry_id"`
	ResponseJSON []byte    `json:"response_json"`
	CreatedAt    time.Time `json:"created_at"`
}
