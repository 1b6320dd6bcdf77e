package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results kept per task.
const historyKeep = 100

// Scheduler runs the background tasks on cron schedules and records every
// run in the SchedulerStore.
type Scheduler struct {
	config        domain.SchedulerConfig
	store         driven.SchedulerStore
	syncOrch      driving.SyncOrchestrator
	retentionDays int
	loc           *time.Location

	mu        sync.Mutex
	running   bool
	cron      *cron.Cron
	schedules map[string]cron.Schedule
	stopCh    chan struct{}

	now func() time.Time
}

// NewScheduler creates a scheduler with configuration.
// Schedules are evaluated in loc; nil means time.Local.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncOrch driving.SyncOrchestrator,
	retentionDays int,
	loc *time.Location,
) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		config:        config,
		store:         store,
		syncOrch:      syncOrch,
		retentionDays: retentionDays,
		loc:           loc,
		schedules:     make(map[string]cron.Schedule),
		now:           time.Now,
	}
}

// Start registers the enabled tasks and runs them until ctx is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("scheduler disabled")
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger.CronLogger{}),
		cron.WithChain(
			cron.Recover(logger.CronLogger{}),
			cron.SkipIfStillRunning(logger.CronLogger{}),
		),
	)
	for _, id := range []string{domain.TaskIDCalendarCheck, domain.TaskIDDailyUpdate, domain.TaskIDWeeklyCleanup} {
		taskCfg := s.config.GetTaskConfig(id)
		if !taskCfg.Enabled {
			continue
		}
		sched, err := cron.ParseStandard(taskCfg.Spec)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%w: schedule for %s: %v", domain.ErrInvalidInput, id, err)
		}
		taskID := id
		c.Schedule(sched, cron.FuncJob(func() {
			if _, err := s.execute(ctx, taskID); err != nil {
				logger.Warn("task %s: %v", taskID, err)
			}
		}))
		s.schedules[id] = sched
		if err := s.ensureTask(ctx, id, taskCfg.Spec, sched); err != nil {
			logger.Warn("scheduler: failed to initialise task %s: %v", id, err)
		}
	}

	s.cron = c
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	c.Start()
	logger.Info("scheduler started with %d tasks", len(c.Entries()))

	select {
	case <-ctx.Done():
		s.shutdown()
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop gracefully shuts down the scheduler and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.shutdown()
	return nil
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.cron
	close(s.stopCh)
	s.mu.Unlock()

	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow executes a task immediately.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	if _, ok := domain.TaskNames[taskID]; !ok {
		return nil, fmt.Errorf("%w: task %q", domain.ErrNotFound, taskID)
	}
	return s.execute(ctx, taskID)
}

// Tasks returns the persisted state of every task.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	return s.store.ListTasks(ctx)
}

// History returns recent results for a task.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	return s.store.GetTaskHistory(ctx, taskID, limit)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, spec string, sched cron.Schedule) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.ScheduledTask{ID: id, Name: domain.TaskNames[id]}
	}
	task.Schedule = spec
	task.Enabled = true
	task.NextRun = sched.Next(s.now().In(s.loc))
	return s.store.SaveTask(ctx, task)
}

// execute runs one task and records the outcome. The returned error is the
// task's own failure; bookkeeping failures are only logged.
func (s *Scheduler) execute(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	result := &domain.TaskResult{
		TaskID:    taskID,
		StartedAt: s.now(),
	}

	var err error
	switch taskID {
	case domain.TaskIDCalendarCheck:
		result.ItemsProcessed, err = s.runCalendarCheck(ctx)
	case domain.TaskIDDailyUpdate:
		result.ItemsProcessed, err = s.runDailyUpdate(ctx)
	case domain.TaskIDWeeklyCleanup:
		result.ItemsProcessed, err = s.runCleanup(ctx)
	default:
		return nil, fmt.Errorf("%w: task %q", domain.ErrNotFound, taskID)
	}

	result.EndedAt = s.now()
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		result.Skipped = true
		result.Error = err.Error()
		logger.Info("%s skipped: previous sweep still running", taskID)
	case err != nil:
		result.Error = err.Error()
	default:
		result.Success = true
	}

	s.record(ctx, result)
	return result, err
}

func (s *Scheduler) record(ctx context.Context, result *domain.TaskResult) {
	task, err := s.store.GetTask(ctx, result.TaskID)
	if err != nil {
		logger.Warn("scheduler: failed to load task %s: %v", result.TaskID, err)
	}
	if task == nil {
		task = &domain.ScheduledTask{
			ID:      result.TaskID,
			Name:    domain.TaskNames[result.TaskID],
			Enabled: s.config.GetTaskConfig(result.TaskID).Enabled,
		}
	}

	if !result.Skipped {
		task.LastRun = result.StartedAt
		if result.Success {
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		} else {
			task.LastError = result.Error
		}
	}
	s.mu.Lock()
	sched := s.schedules[result.TaskID]
	s.mu.Unlock()
	if sched != nil {
		task.NextRun = sched.Next(result.EndedAt.In(s.loc))
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

func (s *Scheduler) runCalendarCheck(ctx context.Context) (int, error) {
	res, err := s.syncOrch.CheckForUpdates(ctx)
	if res == nil {
		return 0, err
	}
	return len(res.DirtyDates), err
}

func (s *Scheduler) runDailyUpdate(ctx context.Context) (int, error) {
	res, err := s.syncOrch.DailyUpdate(ctx)
	if res == nil {
		return 0, err
	}
	return len(res.DirtyDates), err
}

func (s *Scheduler) runCleanup(ctx context.Context) (int, error) {
	res, err := s.syncOrch.CleanupOldData(ctx, s.retentionDays)
	if res == nil {
		return 0, err
	}
	return res.EventsDeleted + res.SegmentsDeleted, err
}
