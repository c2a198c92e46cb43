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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PurchaseServiceImpl implements ports.PurchaseService. Ticket sales and
// concession spends share one debit path: wallet lock, debit entry, fee
// distribution from a single split computation, all in one transaction.
type PurchaseServiceImpl struct {
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	passRepo    ports.PassRepository
	eventRepo   ports.EventRepository
	revenueRepo ports.RevenueProfileRepository
	staffRepo   ports.StaffRepository
	idempRepo   ports.IdempotencyRepository
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	passRepo ports.PassRepository,
	eventRepo ports.EventRepository,
	revenueRepo ports.RevenueProfileRepository,
	staffRepo ports.StaffRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		passRepo:    passRepo,
		eventRepo:   eventRepo,
		revenueRepo: revenueRepo,
		staffRepo:   staffRepo,
		idempRepo:   idempRepo,
		idempCache:  idempCache,
		transactor:  transactor,
		log:         log,
	}
}

// PurchaseTicket debits the wallet for the event's ticket price, records the
// fee distribution, and mints a ghost pass — atomically.
func (s *PurchaseServiceImpl) PurchaseTicket(ctx context.Context, req ports.TicketPurchaseRequest) (*ports.PurchaseResult, error) {
	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load event: %w", err))
	}
	if event == nil {
		return nil, apperror.ErrNotFound("event")
	}
	if !event.IsOnSale() {
		return nil, apperror.ErrEventNotOnSale()
	}
	if event.TicketPriceCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	profile, err := s.loadProfile(ctx, event.RevenueProfileID)
	if err != nil {
		return nil, err
	}

	recipients := map[domain.ShareCategory]*uuid.UUID{}
	if event.PromoterID != nil {
		recipients[domain.CategoryPromoter] = event.PromoterID
	}

	key := domain.PurchaseIdempotencyKey(req.BindingID, req.Reference)
	result, err := s.debitWithSplit(ctx, debitParams{
		key:        key,
		bindingID:  req.BindingID,
		entryType:  domain.EntryTypeTicketPurchase,
		amount:     event.TicketPriceCents,
		profile:    profile,
		recipients: recipients,
		metadata:   map[string]string{"event_id": event.ID.String(), "reference": req.Reference},
		mintPass: func(dbTx pgx.Tx, now time.Time) (*domain.GhostPass, error) {
			pass := &domain.GhostPass{
				ID:              uuid.New(),
				WalletBindingID: req.BindingID,
				EventID:         event.ID,
				Status:          domain.PassStatusActive,
				ValidFrom:       event.StartsAt,
				ValidUntil:      event.EndsAt,
				AllowsReentry:   event.AllowsReentry,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := s.passRepo.Create(ctx, dbTx, pass); err != nil {
				return nil, fmt.Errorf("create pass: %w", err)
			}
			return pass, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if result.Pass != nil && result.Entry != nil {
		metrics.PassesIssued.Inc()
	}
	return result, nil
}

// VendorSpend debits the wallet for a concession payment at a vendor
// terminal and records the fee distribution under the vendor's profile.
func (s *PurchaseServiceImpl) VendorSpend(ctx context.Context, req ports.VendorSpendRequest) (*ports.PurchaseResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	vendor, err := s.staffRepo.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load vendor: %w", err))
	}
	if vendor == nil || vendor.Role != domain.RoleVendor || !vendor.IsActive() {
		return nil, apperror.ErrNotFound("vendor")
	}
	if vendor.RevenueProfileID == nil {
		return nil, apperror.Validation("vendor has no revenue profile configured")
	}

	profile, err := s.loadProfile(ctx, *vendor.RevenueProfileID)
	if err != nil {
		return nil, err
	}

	vendorID := req.VendorID
	return s.debitWithSplit(ctx, debitParams{
		key:        domain.SpendIdempotencyKey(req.BindingID, req.Reference),
		bindingID:  req.BindingID,
		entryType:  domain.EntryTypeVendorSpend,
		amount:     req.Amount,
		profile:    profile,
		recipients: map[domain.ShareCategory]*uuid.UUID{domain.CategoryVendor: &vendorID},
		metadata:   map[string]string{"vendor_id": vendorID.String(), "reference": req.Reference},
	})
}

func (s *PurchaseServiceImpl) loadProfile(ctx context.Context, id uuid.UUID) (*domain.RevenueProfile, error) {
	profile, err := s.revenueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load revenue profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("revenue profile")
	}
	return profile, nil
}

// debitParams carries one debit-with-distribution unit of work.
type debitParams struct {
	key        string
	bindingID  string
	entryType  domain.EntryType
	amount     domain.Money // positive price, applied as a negative delta
	profile    *domain.RevenueProfile
	recipients map[domain.ShareCategory]*uuid.UUID
	metadata   map[string]string
	mintPass   func(dbTx pgx.Tx, now time.Time) (*domain.GhostPass, error)
}

func (s *PurchaseServiceImpl) debitWithSplit(ctx context.Context, p debitParams) (*ports.PurchaseResult, error) {
	if cached, err := s.lookupResult(ctx, p.key); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	split, err := domain.ComputeSplit(p.amount, p.profile)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByBindingIDForUpdate(ctx, dbTx, p.bindingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletDeactivated()
	}
	if wallet.BalanceCents < p.amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	entry, err := domain.NewLedgerEntry(p.bindingID, p.entryType, -p.amount, wallet.BalanceCents)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build entry: %w", err))
	}
	entry.Metadata = p.metadata
	key := p.key
	entry.IdempotencyKey = &key

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, p.bindingID, entry.BalanceAfter); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append debit entry: %w", err))
	}

	// Distribution records: one FEE row per non-zero cut, no balance delta.
	for _, c := range domain.ShareCategories() {
		cut := split[c]
		if cut == 0 {
			continue
		}
		fee := domain.NewFeeEntry(p.bindingID, cut, c, p.recipients[c], entry.BalanceAfter)
		fee.Metadata = p.metadata
		if err := s.ledgerRepo.Insert(ctx, dbTx, fee); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append fee entry (%s): %w", c, err))
		}
	}

	result := &ports.PurchaseResult{Entry: entry, Fees: split}
	if p.mintPass != nil {
		pass, err := p.mintPass(dbTx, entry.CreatedAt)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		result.Pass = pass
	}

	respJSON, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal result: %w", err))
	}
	rec := &domain.IdempotencyRecord{
		Key:          p.key,
		EntryID:      entry.ID,
		ResponseJSON: respJSON,
		CreatedAt:    entry.CreatedAt,
	}
	if err := s.idempRepo.Create(ctx, dbTx, rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.LedgerMutations.WithLabelValues(string(p.entryType)).Inc()

	if err := s.idempCache.Set(ctx, p.key, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", p.key).Msg("failed to cache idempotency record")
	}

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("binding_id", p.bindingID).
		Str("type", string(p.entryType)).
		Int64("amount_cents", int64(p.amount)).
		Int64("balance_cents", int64(entry.BalanceAfter)).
		Msg("purchase committed")

	return result, nil
}

// lookupResult runs the two-layer idempotency check for purchase results.
func (s *PurchaseServiceImpl) lookupResult(ctx context.Context, key string) (*ports.PurchaseResult, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached == nil {
		rec, err := s.idempRepo.Get(ctx, key)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
		}
		if rec == nil {
			return nil, nil
		}
		cached = rec.ResponseJSON
	}

	result := &ports.PurchaseResult{}
	if err := json.Unmarshal(cached, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	return result, nil
}
