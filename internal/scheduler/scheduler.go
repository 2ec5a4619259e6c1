// Package scheduler repeats the pipeline on wall-clock period boundaries.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jengzang/flights-backend-go/internal/pipeline"
)

// Runner runs one cycle, reporting stage changes.
type Runner interface {
	Run(ctx context.Context, onStage func(pipeline.Stage)) (*pipeline.Report, error)
}

// Scheduler runs a cycle at start and then at every interval boundary.
// Cycles never overlap; boundaries missed by a long cycle are skipped.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.RWMutex
	state   pipeline.Stage
	runs    int
	failed  int
	lastRun time.Time
}

// New creates a scheduler for runner.
func New(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		log:      log,
		now:      time.Now,
		after:    time.After,
		state:    pipeline.Idle,
	}
}

// State returns the current orchestrator state.
func (s *Scheduler) State() pipeline.Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns the number of cycles run and how many failed.
func (s *Scheduler) Stats() (runs, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs, s.failed
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", "interval", s.interval)

	s.cycle(ctx)
	for {
		next := NextBoundary(s.now(), s.interval)
		s.log.Debug("waiting for next cycle", "at", next)

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped", "runs", s.runs, "failed", s.failed)
			return nil
		case <-s.after(next.Sub(s.now())):
		}
		s.cycle(ctx)
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.mu.Unlock()

	report, err := s.runner.Run(ctx, s.setState)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failed++
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("cycle failed", "error", err)
		return
	}
	if report.Result != nil {
		s.log.Info("cycle completed",
			"cycle_seq", report.Result.CycleSeq,
			"states", report.States,
			"inserted", report.Result.Inserted,
			"promoted", report.Result.Promoted,
			"duration", report.Duration,
		)
	}
}

func (s *Scheduler) setState(st pipeline.Stage) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()

	if prev != st {
		s.log.Debug("state changed", "from", prev, "to", st)
	}
}

// NextBoundary returns the first multiple of interval strictly after now.
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}
	return now.Truncate(interval).Add(interval)
}
