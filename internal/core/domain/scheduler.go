package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Schedule is the cron expression driving the task.
	Schedule string

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Skipped is set when a run was coalesced because a previous one was still executing.
	Skipped bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of items handled (dates rebuilt, rows purged).
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Spec is a cron expression ("@every 15m", "0 1 * * *").
	Spec string
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDCalendarCheck: {
				Enabled: true,
				Spec:    IntervalSpec(15 * time.Minute),
			},
			TaskIDDailyUpdate: {
				Enabled: true,
				Spec:    "0 1 * * *",
			},
			TaskIDWeeklyCleanup: {
				Enabled: true,
				Spec:    "0 2 * * 0",
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	TaskIDCalendarCheck = "calendar-check"
	TaskIDDailyUpdate   = "daily-update"
	TaskIDWeeklyCleanup = "weekly-cleanup"
)

// TaskNames maps built-in task IDs to display names.
var TaskNames = map[string]string{
	TaskIDCalendarCheck: "Calendar Check",
	TaskIDDailyUpdate:   "Daily Lookahead Update",
	TaskIDWeeklyCleanup: "Weekly Cleanup",
}

// IntervalSpec renders a fixed interval as a cron "@every" expression.
func IntervalSpec(d time.Duration) string {
	return "@every " + d.String()
}

// DailySpec converts an "HH:MM" time of day to a five-field cron expression.
func DailySpec(hhmm string) (string, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: time of day %q, want HH:MM", ErrInvalidInput, hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour in %q", ErrInvalidInput, hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: minute in %q", ErrInvalidInput, hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
