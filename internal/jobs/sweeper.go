package jobs

import (
	"context"
	"time"

	"ghostpass/internal/core/ports"
	"ghostpass/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// PassSweeper periodically flips ACTIVE passes whose validity window has
// closed to EXPIRED, so stale QR codes stop admitting without waiting for a
// gate to reject them.
type PassSweeper struct {
	passRepo ports.PassRepository
	cron     *cron.Cron
	schedule string
	log      zerolog.Logger
}

// NewPassSweeper creates a sweeper on the given cron schedule.
func NewPassSweeper(passRepo ports.PassRepository, schedule string, log zerolog.Logger) *PassSweeper {
	return &PassSweeper{
		passRepo: passRepo,
		cron:     cron.New(),
		schedule: schedule,
		log:      log.With().Str("component", "pass_sweeper").Logger(),
	}
}

// Start registers the sweep and begins the cron loop.
func (s *PassSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("Pass expiry sweeper started")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *PassSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Pass expiry sweeper stopped")
}

func (s *PassSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	expired, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Pass expiry sweep failed")
		return
	}
	if expired > 0 {
		s.log.Info().Int64("expired", expired).Msg("Expired overdue passes")
	}
}

// Sweep runs one expiry pass against the store.
func (s *PassSweeper) Sweep(ctx context.Context) (int64, error) {
	expired, err := s.passRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	metrics.PassesExpired.Add(float64(expired))
	return expired, nil
}
