package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher revalidates cached data and reports whether it was reloaded.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Scheduler runs the periodic source revalidation.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Ctx       context.Context
	log       zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Refresher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Ctx:       ctx,
		log:       log,
	}
}

// Register adds the refresh job on the given six-field cron spec.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	reloaded, err := s.Refresher.Refresh(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh market data")
		return
	}
	if reloaded {
		s.log.Info().Msg("source changed, market data reloaded")
		return
	}
	s.log.Debug().Msg("source unchanged")
}
