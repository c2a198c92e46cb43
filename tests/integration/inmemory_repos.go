package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The in-memory repos back full-stack tests without PostgreSQL. The
// transactor below holds a single mutex for the duration of each
// transaction, which stands in for the row locks the SQL layer takes
// with FOR UPDATE: concurrent mutations are serialized the same way.

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by binding id
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.DeviceFingerprint == w.DeviceFingerprint {
			return fmt.Errorf("fingerprint already bound")
		}
	}
	cp := *w
	r.wallets[w.BindingID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByBindingID(ctx context.Context, bindingID string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[bindingID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.DeviceFingerprint == fingerprint {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByBindingIDForUpdate(ctx context.Context, tx pgx.Tx, bindingID string) (*domain.Wallet, error) {
	return r.GetByBindingID(ctx, bindingID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, bindingID string, balance domain.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[bindingID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	w.BalanceCents = balance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryWalletRepo) SetVerification(ctx context.Context, bindingID string, verificationID, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[bindingID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	w.VerificationID = &verificationID
	w.VerificationState = &state
	return nil
}

func (r *inMemoryWalletRepo) Deactivate(ctx context.Context, bindingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[bindingID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", bindingID)
	}
	w.Status = domain.WalletStatusDeactivated
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.IdempotencyKey != nil && e.Type.MutatesBalance() {
		for i := range r.entries {
			if r.entries[i].IdempotencyKey != nil && *r.entries[i].IdempotencyKey == *e.IdempotencyKey &&
				r.entries[i].Type.MutatesBalance() {
				return fmt.Errorf("duplicate idempotency key")
			}
		}
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			cp := r.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryLedgerRepo) ListByWallet(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerEntry
	for i := range r.entries {
		e := r.entries[i]
		if e.WalletBindingID != params.BindingID {
			continue
		}
		if params.Type != nil && e.Type != *params.Type {
			continue
		}
		result = append(result, e)
	}
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryLedgerRepo) FeeBreakdown(ctx context.Context, params ports.FeeBreakdownParams) (domain.Split, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	split := domain.Split{}
	for i := range r.entries {
		e := r.entries[i]
		if e.Type != domain.EntryTypeFee || e.Category == nil {
			continue
		}
		if params.EventID != nil && e.Metadata["event_id"] != params.EventID.String() {
			continue
		}
		split[*e.Category] += e.AmountCents
	}
	return split, nil
}

func (r *inMemoryLedgerRepo) VendorAccrued(ctx context.Context, vendorID uuid.UUID) (domain.Money, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total domain.Money
	for i := range r.entries {
		e := r.entries[i]
		if e.Type == domain.EntryTypeFee && e.RecipientID != nil && *e.RecipientID == vendorID {
			total += e.AmountCents
		}
	}
	return total, nil
}

func (r *inMemoryLedgerRepo) GetStats(ctx context.Context, venueID *uuid.UUID, periodStart *time.Time) (*ports.LedgerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.LedgerStats{}
	for i := range r.entries {
		e := r.entries[i]
		if periodStart != nil && e.CreatedAt.Before(*periodStart) {
			continue
		}
		stats.TotalEntries++
		switch {
		case e.Type == domain.EntryTypeFee:
			stats.TotalFeeCents += e.AmountCents
		case e.AmountCents > 0:
			stats.TotalCredited += e.AmountCents
		default:
			stats.TotalDebited += -e.AmountCents
		}
		switch e.Type {
		case domain.EntryTypeTicketPurchase:
			stats.TicketRevenue += -e.AmountCents
		case domain.EntryTypeVendorSpend:
			stats.VendorRevenue += -e.AmountCents
		}
	}
	return stats, nil
}

// --- In-Memory Pass Repo ---

type inMemoryPassRepo struct {
	mu     sync.RWMutex
	passes map[uuid.UUID]*domain.GhostPass
}

func newInMemoryPassRepo() *inMemoryPassRepo {
	return &inMemoryPassRepo{passes: make(map[uuid.UUID]*domain.GhostPass)}
}

func (r *inMemoryPassRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.GhostPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.passes[p.ID] = &cp
	return nil
}

func (r *inMemoryPassRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GhostPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.passes[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPassRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GhostPass, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPassRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.GhostPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.passes[p.ID]; !ok {
		return fmt.Errorf("pass not found: %s", p.ID)
	}
	cp := *p
	r.passes[p.ID] = &cp
	return nil
}

func (r *inMemoryPassRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PassStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.passes[id]
	if !ok {
		return fmt.Errorf("pass not found: %s", id)
	}
	p.Status = status
	return nil
}

func (r *inMemoryPassRepo) ListByWallet(ctx context.Context, bindingID string) ([]domain.GhostPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.GhostPass
	for _, p := range r.passes {
		if p.WalletBindingID == bindingID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *inMemoryPassRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.passes {
		if p.Status == domain.PassStatusActive && p.ValidUntil.Before(now) {
			p.Status = domain.PassStatusExpired
			n++
		}
	}
	return n, nil
}

// --- In-Memory Entry Log Repo ---

type inMemoryEntryLogRepo struct {
	mu   sync.RWMutex
	logs []domain.EntryLog
}

func newInMemoryEntryLogRepo() *inMemoryEntryLogRepo {
	return &inMemoryEntryLogRepo{}
}

func (r *inMemoryEntryLogRepo) Insert(ctx context.Context, tx pgx.Tx, l *domain.EntryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

func (r *inMemoryEntryLogRepo) CountAdmissions(ctx context.Context, venueID *uuid.UUID, since *time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for i := range r.logs {
		if venueID != nil && r.logs[i].VenueID != *venueID {
			continue
		}
		if since != nil && r.logs[i].ScannedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

// --- In-Memory Event Repo ---

type inMemoryEventRepo struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*domain.Event
}

func newInMemoryEventRepo() *inMemoryEventRepo {
	return &inMemoryEventRepo{events: make(map[uuid.UUID]*domain.Event)}
}

func (r *inMemoryEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *inMemoryEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return fmt.Errorf("event not found: %s", id)
	}
	e.Status = status
	return nil
}

func (r *inMemoryEventRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Event
	for _, e := range r.events {
		if e.VenueID == venueID {
			result = append(result, *e)
		}
	}
	return result, nil
}

// --- In-Memory Revenue Profile Repo ---

type inMemoryRevenueRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.RevenueProfile
}

func newInMemoryRevenueRepo() *inMemoryRevenueRepo {
	return &inMemoryRevenueRepo{profiles: make(map[uuid.UUID]*domain.RevenueProfile)}
}

func (r *inMemoryRevenueRepo) Create(ctx context.Context, p *domain.RevenueProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *inMemoryRevenueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RevenueProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryRevenueRepo) Update(ctx context.Context, p *domain.RevenueProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return fmt.Errorf("revenue profile not found: %s", p.ID)
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *inMemoryRevenueRepo) List(ctx context.Context) ([]domain.RevenueProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.RevenueProfile
	for _, p := range r.profiles {
		result = append(result, *p)
	}
	return result, nil
}

// --- In-Memory Staff Repo ---

type inMemoryStaffRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.StaffAccount
}

func newInMemoryStaffRepo() *inMemoryStaffRepo {
	return &inMemoryStaffRepo{accounts: make(map[uuid.UUID]*domain.StaffAccount)}
}

func (r *inMemoryStaffRepo) Create(ctx context.Context, a *domain.StaffAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryStaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryStaffRepo) GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct {
	mu      sync.RWMutex
	payouts map[uuid.UUID]*domain.PayoutRequest
}

func newInMemoryPayoutRepo() *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{payouts: make(map[uuid.UUID]*domain.PayoutRequest)}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, p *domain.PayoutRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payouts[p.ID] = &cp
	return nil
}

func (r *inMemoryPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPayoutRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPayoutRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus, processedBy *uuid.UUID, processedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return fmt.Errorf("payout not found: %s", id)
	}
	p.Status = status
	p.ProcessedBy = processedBy
	p.ProcessedAt = processedAt
	return nil
}

func (r *inMemoryPayoutRepo) List(ctx context.Context, params ports.PayoutListParams) ([]domain.PayoutRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.PayoutRequest
	for _, p := range r.payouts {
		if params.VendorID != nil && p.VendorID != *params.VendorID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *inMemoryPayoutRepo) SumReserved(ctx context.Context, vendorID uuid.UUID) (domain.Money, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total domain.Money
	for _, p := range r.payouts {
		if p.VendorID == vendorID && p.Status != domain.PayoutStatusRejected {
			total += p.AmountCents
		}
	}
	return total, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	recs map[string]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{recs: make(map[string]*domain.IdempotencyRecord)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[rec.Key]; ok {
		return fmt.Errorf("duplicate idempotency key: %s", rec.Key)
	}
	cp := *rec
	r.recs[rec.Key] = &cp
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.RWMutex
	logs []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

// --- In-Memory Transactor ---

// txSnapshotter is implemented by stores whose state must revert when a
// transaction rolls back.
type txSnapshotter interface {
	snapshot() (restore func())
}

func (r *inMemoryWalletRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]*domain.Wallet, len(r.wallets))
	for k, v := range r.wallets {
		cp := *v
		saved[k] = &cp
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.wallets = saved
	}
}

func (r *inMemoryLedgerRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make([]domain.LedgerEntry, len(r.entries))
	copy(saved, r.entries)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = saved
	}
}

func (r *inMemoryPassRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]*domain.GhostPass, len(r.passes))
	for k, v := range r.passes {
		cp := *v
		saved[k] = &cp
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.passes = saved
	}
}

func (r *inMemoryEntryLogRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make([]domain.EntryLog, len(r.logs))
	copy(saved, r.logs)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.logs = saved
	}
}

func (r *inMemoryPayoutRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]*domain.PayoutRequest, len(r.payouts))
	for k, v := range r.payouts {
		cp := *v
		saved[k] = &cp
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.payouts = saved
	}
}

func (r *inMemoryIdempotencyRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]*domain.IdempotencyRecord, len(r.recs))
	for k, v := range r.recs {
		cp := *v
		saved[k] = &cp
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.recs = saved
	}
}

// inMemoryTransactor serializes transactions with one mutex, matching the
// serialization the SQL layer gets from FOR UPDATE row locks. Each Begin
// snapshots the registered stores so a Rollback restores them, the way a
// real transaction discards uncommitted writes.
type inMemoryTransactor struct {
	mu     sync.Mutex
	stores []txSnapshotter
}

func newInMemoryTransactor(stores ...txSnapshotter) *inMemoryTransactor {
	return &inMemoryTransactor{stores: stores}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	return &lockTx{release: &t.mu, restores: restores}, nil
}

// lockTx holds the transactor mutex until Commit or Rollback, whichever
// comes first. Rollback restores the store snapshots taken at Begin.
type lockTx struct {
	mu       sync.Mutex
	release  *sync.Mutex
	restores []func()
	finished bool
}

func (t *lockTx) finish(revert bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	if revert {
		for i := len(t.restores) - 1; i >= 0; i-- {
			t.restores[i]()
		}
	}
	t.release.Unlock()
}

func (t *lockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockTx) Commit(ctx context.Context) error          { t.finish(false); return nil }
func (t *lockTx) Rollback(ctx context.Context) error        { t.finish(true); return nil }
func (t *lockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockTx) Conn() *pgx.Conn { return nil }
