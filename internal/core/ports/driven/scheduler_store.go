package driven

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// SchedulerStore persists background task state and run history.
// The history backs the `history` command and the status API.
type SchedulerStore interface {
	// GetTask retrieves a task by ID.
	// Returns nil and no error if the task has never run.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all known tasks ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task and nothing else.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordResult appends a run (or a coalesced skip) to the history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns the latest results for a task, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps only the newest 'keep' results per task.
	PruneHistory(ctx context.Context, keep int) error
}
