package gc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Sweeper on a cron schedule.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler constructs a Scheduler for sweeper.
func NewScheduler(sweeper *Sweeper) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "imagestore.gc.scheduler"),
	}
}

// Start schedules the sweep to run on the given standard cron
// expression (e.g. "0 */6 * * *" for every 6 hours) and begins
// running it. Start returns once the schedule is registered; the
// sweep itself runs asynchronously on each firing. Cancelling ctx
// stops the scheduler.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("imagestore/gc: invalid cron schedule %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("imagestore/gc: failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("image store gc scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runSweep(ctx context.Context) {
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Warn("scheduled sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("scheduled sweep completed", "removed", removed)
	} else {
		s.logger.Debug("scheduled sweep completed, nothing removed")
	}
}

// Stop stops the scheduler, waiting for any in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		doneCtx := s.cron.Stop()
		<-doneCtx.Done()
		s.running = false
		s.logger.Info("image store gc scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
