package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher reloads a piece of reference data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages the background cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Specs use the six-field format with
// a leading seconds column.
func NewScheduler(ctx context.Context, r Refresher) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Ctx:       ctx,
	}
}

// RegisterRefresh schedules the directory refresh.
func (s *Scheduler) RegisterRefresh(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RefreshNow runs the refresh task immediately and returns its error.
func (s *Scheduler) RefreshNow() error {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	if err := s.refresh(); err != nil {
		log.Error().Err(err).Msg("scheduled directory refresh failed")
	}
}

func (s *Scheduler) refresh() error {
	start := time.Now()
	if err := s.Refresher.Refresh(s.Ctx); err != nil {
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("refresh task finished")
	return nil
}
