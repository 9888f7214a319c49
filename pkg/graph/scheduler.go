package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"causeway-hq/causeway/pkg/dml/ast"
)

// ModelProvider supplies the current resolved model for a scheduled
// cleanup run. It is a function so the scheduler always cleans against
// the model as of the run, not as of Start.
type ModelProvider func(ctx context.Context) (*ast.DecisionModel, error)

// Scheduler runs Cleanup on a cron schedule. Stale nodes are harmless
// between runs; the schedule just keeps long-lived stores from
// accumulating renamed or dropped entities.
type Scheduler struct {
	store    Store
	provider ModelProvider
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a cleanup scheduler. The schedule uses standard
// cron syntax, for example "0 3 * * *" for daily at 3 AM. An empty
// schedule disables scheduling.
func NewScheduler(store Store, provider ModelProvider, schedule string) *Scheduler {
	return &Scheduler{
		store:    store,
		provider: provider,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "graph.scheduler"),
	}
}

// Start begins scheduled cleanup. It returns immediately; runs happen
// in the cron goroutine until the context is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("cleanup schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("cleanup scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	s.logger.Info("starting scheduled graph cleanup")

	model, err := s.provider(ctx)
	if err != nil {
		s.logger.Error("scheduled cleanup could not load model", "error", err)
		return
	}

	report, err := Cleanup(ctx, model, s.store)
	if err != nil {
		s.logger.Error("scheduled cleanup failed", "error", err)
		return
	}

	if len(report.Removed) > 0 {
		s.logger.Info("scheduled cleanup completed",
			"model", report.Model,
			"removed", len(report.Removed),
		)
	} else {
		s.logger.Debug("scheduled cleanup completed, nothing removed")
	}
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("cleanup scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled cleanup time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
