package service

import (
	"context"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/metrics"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// scanNonceTTL bounds how long a gateway scan nonce blocks redelivery.
const scanNonceTTL = 10 * time.Minute

// AdmissionServiceImpl implements ports.AdmissionService. The pass row is
// locked for the duration of the decision so two gates scanning the same
// pass concurrently serialize, and only one consumes it.
type AdmissionServiceImpl struct {
	passRepo     ports.PassRepository
	eventRepo    ports.EventRepository
	entryLogRepo ports.EntryLogRepository
	scanGuard    ports.ScanGuard
	transactor   ports.DBTransactor
	now          func() time.Time
	log          zerolog.Logger
}

// NewAdmissionService creates a new AdmissionServiceImpl.
func NewAdmissionService(
	passRepo ports.PassRepository,
	eventRepo ports.EventRepository,
	entryLogRepo ports.EntryLogRepository,
	scanGuard ports.ScanGuard,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AdmissionServiceImpl {
	return &AdmissionServiceImpl{
		passRepo:     passRepo,
		eventRepo:    eventRepo,
		entryLogRepo: entryLogRepo,
		scanGuard:    scanGuard,
		transactor:   transactor,
		now:          time.Now,
		log:          log,
	}
}

// Scan evaluates a gate scan and, when admitted, records the entry.
// Denials are results, not errors: the gateway needs allowed=false with a
// reason, never a 4xx it cannot distinguish from its own mistakes.
func (s *AdmissionServiceImpl) Scan(ctx context.Context, req ports.ScanRequest) (*ports.ScanResult, error) {
	if req.Nonce != "" {
		first, err := s.scanGuard.FirstSeen(ctx, req.PassID, req.GatewayID, req.Nonce, scanNonceTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("pass_id", req.PassID.String()).Msg("scan guard unavailable, continuing without replay protection")
		} else if !first {
			return s.denied(req, domain.Deny(domain.DenyDuplicateScan), nil)
		}
	}

	now := s.now().UTC()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	pass, err := s.passRepo.GetByIDForUpdate(ctx, dbTx, req.PassID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock pass: %w", err))
	}

	var event *domain.Event
	if pass != nil {
		event, err = s.eventRepo.GetByID(ctx, pass.EventID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load event: %w", err))
		}
	}

	decision := domain.CheckAdmission(pass, event, req.VenueID, now)
	if !decision.Allowed {
		return s.denied(req, decision, pass)
	}

	pass.RecordEntry(req.GatewayID, now)
	if err := s.passRepo.Update(ctx, dbTx, pass); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update pass: %w", err))
	}

	entryLog := &domain.EntryLog{
		ID:        uuid.New(),
		PassID:    pass.ID,
		EventID:   pass.EventID,
		VenueID:   req.VenueID,
		GatewayID: req.GatewayID,
		ScannedAt: now,
	}
	if err := s.entryLogRepo.Insert(ctx, dbTx, entryLog); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append entry log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.ScansTotal.WithLabelValues("allowed").Inc()

	s.log.Info().
		Str("pass_id", pass.ID.String()).
		Str("gateway_id", req.GatewayID).
		Int("entry_count", pass.EntryCount).
		Msg("entry admitted")

	return &ports.ScanResult{Decision: domain.Allow(), Pass: pass, EntryCount: pass.EntryCount}, nil
}

func (s *AdmissionServiceImpl) denied(req ports.ScanRequest, decision domain.Decision, pass *domain.GhostPass) (*ports.ScanResult, error) {
	metrics.ScansTotal.WithLabelValues(string(decision.Reason)).Inc()

	entryCount := 0
	if pass != nil {
		entryCount = pass.EntryCount
	}

	s.log.Info().
		Str("pass_id", req.PassID.String()).
		Str("gateway_id", req.GatewayID).
		Str("reason", string(decision.Reason)).
		Msg("entry denied")

	return &ports.ScanResult{Decision: decision, Pass: pass, EntryCount: entryCount}, nil
}
