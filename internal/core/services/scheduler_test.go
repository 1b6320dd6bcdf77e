package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/transitsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
)

// mockOrchestrator counts calls and returns canned results.
type mockOrchestrator struct {
	checkErr    error
	checkCalls  int
	dailyCalls  int
	cleanupDays int
}

func (m *mockOrchestrator) CheckForUpdates(context.Context) (*driving.SweepResult, error) {
	m.checkCalls++
	if m.checkErr != nil {
		return nil, m.checkErr
	}
	return &driving.SweepResult{DirtyDates: []string{"2025-03-10", "2025-03-11"}}, nil
}

func (m *mockOrchestrator) DailyUpdate(context.Context) (*driving.SweepResult, error) {
	m.dailyCalls++
	return &driving.SweepResult{DirtyDates: []string{"2025-04-07"}}, nil
}

func (m *mockOrchestrator) ResetWindow(context.Context) (*driving.SweepResult, error) {
	return &driving.SweepResult{}, nil
}

func (m *mockOrchestrator) RebuildDates(context.Context, []string) (*driving.SweepResult, error) {
	return &driving.SweepResult{}, nil
}

func (m *mockOrchestrator) CleanupOldData(_ context.Context, days int) (*driving.CleanupResult, error) {
	m.cleanupDays = days
	return &driving.CleanupResult{EventsDeleted: 3, SegmentsDeleted: 4}, nil
}

func (m *mockOrchestrator) Status(context.Context) *driving.SyncStatus {
	return &driving.SyncStatus{}
}

func TestScheduler_RunNow_RecordsResult(t *testing.T) {
	store := memory.NewSchedulerStore()
	orch := &mockOrchestrator{}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, orch, 7, time.UTC)
	ctx := context.Background()

	result, err := s.RunNow(ctx, domain.TaskIDCalendarCheck)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ItemsProcessed)

	task, err := store.GetTask(ctx, domain.TaskIDCalendarCheck)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Calendar Check", task.Name)
	assert.False(t, task.LastSuccess.IsZero())
	assert.Empty(t, task.LastError)

	history, err := s.History(ctx, domain.TaskIDCalendarCheck, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestScheduler_RunNow_Cleanup(t *testing.T) {
	orch := &mockOrchestrator{}
	s := NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), orch, 14, time.UTC)

	result, err := s.RunNow(context.Background(), domain.TaskIDWeeklyCleanup)
	require.NoError(t, err)
	assert.Equal(t, 14, orch.cleanupDays)
	assert.Equal(t, 7, result.ItemsProcessed)
}

func TestScheduler_RunNow_UnknownTask(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), &mockOrchestrator{}, 7, time.UTC)

	_, err := s.RunNow(context.Background(), "reindex")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduler_FailureAndSkip(t *testing.T) {
	store := memory.NewSchedulerStore()
	orch := &mockOrchestrator{checkErr: errors.New("source offline")}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, orch, 7, time.UTC)
	ctx := context.Background()

	result, err := s.RunNow(ctx, domain.TaskIDCalendarCheck)
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.Skipped)

	task, err := store.GetTask(ctx, domain.TaskIDCalendarCheck)
	require.NoError(t, err)
	assert.Equal(t, "source offline", task.LastError)
	lastRun := task.LastRun

	orch.checkErr = domain.ErrSyncInProgress
	result, err = s.RunNow(ctx, domain.TaskIDCalendarCheck)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.True(t, result.Skipped)

	task, err = store.GetTask(ctx, domain.TaskIDCalendarCheck)
	require.NoError(t, err)
	assert.Equal(t, "source offline", task.LastError, "a skipped tick does not overwrite the last run")
	assert.Equal(t, lastRun, task.LastRun)

	history, err := s.History(ctx, domain.TaskIDCalendarCheck, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Skipped)
}

func TestScheduler_StartRegistersTasksAndStops(t *testing.T) {
	store := memory.NewSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockOrchestrator{}, 7, time.UTC)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		tasks, _ := s.Tasks(ctx)
		return len(tasks) == 3
	}, time.Second, 5*time.Millisecond)

	tasks, err := s.Tasks(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.True(t, task.Enabled)
		assert.NotEmpty(t, task.Schedule)
		assert.True(t, task.NextRun.After(time.Now().Add(-time.Second)), task.ID)
	}

	require.NoError(t, s.Stop())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.NoError(t, s.Stop(), "second stop is a no-op")
}

func TestScheduler_StartCancelledByContext(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), &mockOrchestrator{}, 7, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	cfg := domain.DefaultSchedulerConfig()
	cfg.TaskConfigs[domain.TaskIDDailyUpdate] = domain.TaskConfig{Enabled: true, Spec: "every day"}
	s := NewScheduler(cfg, memory.NewSchedulerStore(), &mockOrchestrator{}, 7, time.UTC)

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScheduler_Disabled(t *testing.T) {
	cfg := domain.DefaultSchedulerConfig()
	cfg.Enabled = false
	s := NewScheduler(cfg, memory.NewSchedulerStore(), &mockOrchestrator{}, 7, time.UTC)

	assert.NoError(t, s.Start(context.Background()))
}
