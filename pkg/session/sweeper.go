package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/vortex-bridge/pkg/observability"
)

// DefaultSweepSchedule runs the sweeper every five minutes
const DefaultSweepSchedule = "@every 5m"

// Sweeper periodically drops expired sessions from a Store
type Sweeper struct {
	store  Store
	cron   *cron.Cron
	logger *observability.Logger
	now    func() time.Time
}

// NewSweeper schedules Store.Sweep on the given cron spec
func NewSweeper(store Store, schedule string, logger *observability.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Sweeper{
		store:  store,
		cron:   cron.New(),
		logger: logger.WithField("component", "session_sweeper"),
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.WithError(err).Warn("Session sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// RunOnce sweeps expired sessions immediately
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	removed, err := s.store.Sweep(ctx, s.now())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.WithField("removed", removed).Debug("Swept expired sessions")
	}
	return removed, nil
}

// Start begins the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
