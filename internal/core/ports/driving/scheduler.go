package driving

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// Scheduler runs the periodic check, daily lookahead and weekly cleanup.
type Scheduler interface {
	// Start registers the tasks and begins running them.
	// Blocks until context is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully stops all tasks and waits for running jobs.
	Stop() error

	// RunNow executes a task immediately, outside its schedule.
	RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error)

	// Tasks returns the persisted state of every task.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// History returns recent results for a task, newest first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
