package service

import (
	"context"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	payment    ports.PaymentProvider
	identity   ports.IdentityVerifier
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	payment ports.PaymentProvider,
	identity ports.IdentityVerifier,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		payment:    payment,
		identity:   identity,
		log:        log,
	}
}

// Bind returns the wallet bound to a device fingerprint, creating it on
// first contact. Rebinding the same device returns the existing wallet, so
// an app reinstall never strands a balance.
func (s *WalletServiceImpl) Bind(ctx context.Context, deviceFingerprint string) (*domain.Wallet, error) {
	if deviceFingerprint == "" {
		return nil, apperror.Validation("device fingerprint is required")
	}

	existing, err := s.walletRepo.GetByFingerprint(ctx, deviceFingerprint)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet by fingerprint: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:                uuid.New(),
		BindingID:         uuid.New().String(),
		BalanceCents:      0,
		DeviceFingerprint: deviceFingerprint,
		Status:            domain.WalletStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("binding_id", wallet.BindingID).
		Msg("wallet bound")

	return wallet, nil
}

// Get returns the wallet for a binding id.
func (s *WalletServiceImpl) Get(ctx context.Context, bindingID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByBindingID(ctx, bindingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// StartVerification opens an identity-verification session for the wallet
// holder. Only the provider-side session handle is stored; no PII lands here.
func (s *WalletServiceImpl) StartVerification(ctx context.Context, bindingID string) (*ports.VerificationSession, error) {
	wallet, err := s.Get(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletDeactivated()
	}

	session, err := s.identity.StartSession(ctx, bindingID)
	if err != nil {
		return nil, apperror.ErrIdentityProvider(err)
	}

	if err := s.walletRepo.SetVerification(ctx, bindingID, session.ID, session.Status); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save verification state: %w", err))
	}

	s.log.Info().
		Str("binding_id", bindingID).
		Str("verification_id", session.ID).
		Msg("identity verification started")

	return session, nil
}

// CreateTopupSession asks the payment provider for a hosted checkout page.
// The wallet is credited later, by the verified webhook — never here.
func (s *WalletServiceImpl) CreateTopupSession(ctx context.Context, bindingID string, amount domain.Money) (*ports.CheckoutSession, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.Get(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletDeactivated()
	}

	session, err := s.payment.CreateCheckoutSession(ctx, ports.CheckoutSessionRequest{
		BindingID:   bindingID,
		AmountCents: amount,
		Description: "Wallet top-up",
	})
	if err != nil {
		return nil, apperror.ErrPaymentProvider(err)
	}

	s.log.Info().
		Str("binding_id", bindingID).
		Str("session_id", session.ID).
		Int64("amount_cents", int64(amount)).
		Msg("topup session created")

	return session, nil
}
