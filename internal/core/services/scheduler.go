package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// maxTaskHistory caps the number of results kept per scheduler.
const maxTaskHistory = 100

// PendingIndexer indexes fatwas the oracle has not seen yet.
type PendingIndexer interface {
	IndexPending(ctx context.Context) (int, error)
}

// Scheduler runs the oracle backfill task on a fixed interval.
// Task state lives in memory and resets on restart.
type Scheduler struct {
	backfill PendingIndexer
	tick     time.Duration

	mu       sync.Mutex
	task     domain.ScheduledTask
	history  []domain.TaskResult
	running  bool
	inFlight bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler that runs backfill every interval.
func NewScheduler(backfill PendingIndexer, interval time.Duration) *Scheduler {
	return &Scheduler{
		backfill: backfill,
		tick:     time.Minute,
		task: domain.ScheduledTask{
			ID:       domain.TaskIDOracleBackfill,
			Name:     "Oracle Backfill",
			Interval: interval,
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.task.Interval <= 0 {
		s.mu.Unlock()
		logger.Debug("Scheduler: backfill disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	tick := s.tick
	if tick > s.task.Interval {
		tick = s.task.Interval
	}
	s.mu.Unlock()

	s.runIfDue(ctx)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runIfDue(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for a running task.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Task returns a snapshot of the backfill task state.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// History returns the most recent task results, oldest first.
func (s *Scheduler) History() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TaskResult(nil), s.history...)
}

func (s *Scheduler) runIfDue(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight || !s.task.IsDue(time.Now()) {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := domain.TaskResult{
			TaskID:    domain.TaskIDOracleBackfill,
			StartedAt: time.Now(),
		}
		n, err := s.backfill.IndexPending(ctx)
		result.EndedAt = time.Now()
		result.ItemsProcessed = n

		switch {
		case err == nil:
			result.Success = true
			logger.Info("Scheduler: indexed %d pending fatwas", n)
		case errors.Is(err, domain.ErrOracleUnavailable):
			result.Error = err.Error()
			logger.Debug("Scheduler: oracle not configured, skipping backfill")
		default:
			result.Error = err.Error()
			logger.Warn("Scheduler: backfill failed after %d fatwas: %v", n, err)
		}

		s.record(result)
	}()
}

func (s *Scheduler) record(result domain.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	s.task.LastRun = result.StartedAt
	s.task.NextRun = result.EndedAt.Add(s.task.Interval)
	if result.Success {
		s.task.LastError = ""
		s.task.LastSuccess = result.EndedAt
	} else {
		s.task.LastError = result.Error
	}

	s.history = append(s.history, result)
	if len(s.history) > maxTaskHistory {
		s.history = s.history[len(s.history)-maxTaskHistory:]
	}
}
