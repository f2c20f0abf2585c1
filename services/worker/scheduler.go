package worker

import (
	"context"
	"fmt"
	"sync"

	"swecron/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and runs the worker on a cron spec
type Scheduler struct {
	cron   *cron.Cron
	worker *Worker
	spec   string
	mu     sync.Mutex
}

// NewScheduler creates a scheduler for spec, e.g. "0 */6 * * *" or "@every 6h"
func NewScheduler(w *Worker, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		worker: w,
		spec:   spec,
	}
}

// Start registers the job, starts the cron loop and runs once immediately
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.ForScheduler().Info().Str("spec", s.spec).Msg("Cron started")

	go s.runOnce(ctx)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.mu.Lock()
	s.mu.Unlock()
	logger.ForScheduler().Info().Msg("Cron stopped")
}

// Run starts the scheduler and blocks until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// runOnce runs the worker unless a previous run is still in progress
func (s *Scheduler) runOnce(ctx context.Context) {
	log := logger.ForScheduler()
	if !s.mu.TryLock() {
		log.Warn().Msg("Previous run still in progress, skipping")
		return
	}
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	log.Info().Msg("Run started")
	result, err := s.worker.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Run failed")
		return
	}
	log.Info().
		Int("found", result.Found).
		Int("new", result.New).
		Int("total", result.Total).
		Bool("notified", result.Notified).
		Msg("Run complete")
}
