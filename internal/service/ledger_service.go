package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/metrics"
	"ghostpass/pkg/apperror"

	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	notifier   ports.Notifier
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		transactor: transactor,
		notifier:   notifier,
		log:        log,
	}
}

// Apply performs one wallet balance mutation with pessimistic locking.
// The wallet row lock serializes concurrent mutations against the same
// wallet; balance update and ledger append commit as a single unit.
func (s *LedgerServiceImpl) Apply(ctx context.Context, req ports.ApplyRequest) (*domain.LedgerEntry, error) {
	entry, _, err := s.apply(ctx, req)
	return entry, err
}

// apply reports whether the mutation was committed by this call: a cached
// idempotency hit returns the original entry with applied=false so callers
// can skip first-time-only side effects on redelivery.
func (s *LedgerServiceImpl) apply(ctx context.Context, req ports.ApplyRequest) (entry *domain.LedgerEntry, applied bool, err error) {
	if req.Delta == 0 {
		return nil, false, apperror.ErrInvalidAmount()
	}
	if !req.Type.MutatesBalance() {
		return nil, false, apperror.Validation(fmt.Sprintf("entry type %s cannot be applied directly", req.Type))
	}

	if req.IdempotencyKey != "" {
		if cached, err := s.lookupDuplicate(ctx, req.IdempotencyKey); err != nil {
			return nil, false, err
		} else if cached != nil {
			return cached, false, nil
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByBindingIDForUpdate(ctx, dbTx, req.BindingID)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, false, apperror.ErrNotFound("wallet")
	}
	if !wallet.IsActive() {
		return nil, false, apperror.ErrWalletDeactivated()
	}

	if req.Delta < 0 && wallet.BalanceCents+req.Delta < 0 {
		return nil, false, apperror.ErrInsufficientBalance()
	}

	entry, err = domain.NewLedgerEntry(req.BindingID, req.Type, req.Delta, wallet.BalanceCents)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("build entry: %w", err))
	}
	entry.Metadata = req.Metadata
	if req.IdempotencyKey != "" {
		k := req.IdempotencyKey
		entry.IdempotencyKey = &k
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, req.BindingID, entry.BalanceAfter); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	var respJSON []byte
	if req.IdempotencyKey != "" {
		respJSON, err = json.Marshal(entry)
		if err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("marshal entry: %w", err))
		}
		rec := &domain.IdempotencyRecord{
			Key:          req.IdempotencyKey,
			EntryID:      entry.ID,
			ResponseJSON: respJSON,
			CreatedAt:    entry.CreatedAt,
		}
		if err := s.idempRepo.Create(ctx, dbTx, rec); err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.LedgerMutations.WithLabelValues(string(req.Type)).Inc()

	// Post-commit: cache in Redis (best-effort)
	if req.IdempotencyKey != "" {
		if err := s.idempCache.Set(ctx, req.IdempotencyKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("failed to cache idempotency record")
		}
	}

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("binding_id", req.BindingID).
		Str("type", string(req.Type)).
		Int64("delta_cents", int64(req.Delta)).
		Int64("balance_cents", int64(entry.BalanceAfter)).
		Msg("ledger mutation applied")

	return entry, true, nil
}

// ConfirmTopup credits a wallet exactly once per confirmed payment session.
// The session id keys the idempotency record, so webhook redelivery returns
// the original entry without touching the balance again.
func (s *LedgerServiceImpl) ConfirmTopup(ctx context.Context, sessionID, bindingID string, amount domain.Money) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	entry, applied, err := s.apply(ctx, ports.ApplyRequest{
		BindingID:      bindingID,
		Delta:          amount,
		Type:           domain.EntryTypeCredit,
		IdempotencyKey: domain.TopupIdempotencyKey(sessionID),
		Metadata:       map[string]string{"session_id": sessionID},
	})
	if err != nil {
		return nil, err
	}

	// Redelivered webhooks replay the cached entry; only the first
	// application counts the payment and notifies the holder.
	if applied {
		metrics.PaymentsCaptured.Inc()

		if s.notifier != nil {
			n := ports.Notification{
				BindingID: bindingID,
				Title:     "Wallet topped up",
				Body:      fmt.Sprintf("Your wallet was credited %s.", amount),
			}
			if err := s.notifier.Push(ctx, n); err != nil {
				s.log.Warn().Err(err).Str("binding_id", bindingID).Msg("topup notification failed")
			}
		}
	}

	return entry, nil
}

// lookupDuplicate runs the two-layer idempotency check: Redis fast path,
// then the durable DB record.
func (s *LedgerServiceImpl) lookupDuplicate(ctx context.Context, key string) (*domain.LedgerEntry, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedEntry(cached)
	}

	rec, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if rec != nil {
		return unmarshalCachedEntry(rec.ResponseJSON)
	}
	return nil, nil
}

func unmarshalCachedEntry(data []byte) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached entry: %w", err))
	}
	return entry, nil
}
