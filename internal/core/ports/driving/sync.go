package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// SyncOrchestrator drives change sweeps and date rebuilds.
type SyncOrchestrator interface {
	// CheckForUpdates fetches the look-forward window, detects changed and
	// deleted events, and rebuilds every dirty date.
	// Returns domain.ErrSyncInProgress if a sweep is already running.
	CheckForUpdates(ctx context.Context) (*SweepResult, error)

	// DailyUpdate rebuilds the date at the far edge of the look-forward window.
	DailyUpdate(ctx context.Context) (*SweepResult, error)

	// ResetWindow refreshes stored events and rebuilds every date in the window.
	ResetWindow(ctx context.Context) (*SweepResult, error)

	// RebuildDates rebuilds the given YYYY-MM-DD dates from stored events.
	RebuildDates(ctx context.Context, dates []string) (*SweepResult, error)

	// CleanupOldData removes stored events and segments dated more than
	// days before today. Fingerprint records are kept.
	CleanupOldData(ctx context.Context, days int) (*CleanupResult, error)

	// Status reports the current sweep and rebuild activity.
	Status(ctx context.Context) *SyncStatus
}

// SweepResult summarises one sweep.
type SweepResult struct {
	// Kind names the entry point ("check", "daily", "reset", "rebuild").
	Kind string

	StartedAt time.Time
	EndedAt   time.Time

	// Fetched is the number of located events returned by the source.
	Fetched int

	// Changed is how many fetched events were new or changed.
	Changed int

	// Deleted is how many stored events vanished upstream.
	Deleted int

	// DirtyDates lists the rebuilt dates in ascending order.
	DirtyDates []string

	// Rebuilds holds one result per dirty date.
	Rebuilds []domain.RebuildResult
}

// SegmentsCreated totals the segments that reached the destination calendar.
func (r *SweepResult) SegmentsCreated() int {
	n := 0
	for i := range r.Rebuilds {
		n += r.Rebuilds[i].Created
	}
	return n
}

// Failures totals failed sub-steps across all rebuilds.
func (r *SweepResult) Failures() int {
	n := 0
	for i := range r.Rebuilds {
		n += r.Rebuilds[i].Failures
	}
	return n
}

// CleanupResult summarises a retention sweep.
type CleanupResult struct {
	// Cutoff is the first date that was kept.
	Cutoff string

	EventsDeleted   int
	SegmentsDeleted int
}

// SyncStatus represents current engine activity.
type SyncStatus struct {
	// Running indicates if a sweep is currently in progress.
	Running bool

	// LastSweep is the most recent completed sweep, if any.
	LastSweep *SweepResult

	// LastError is the error of the most recent failed sweep.
	LastError string

	// Dates maps dates with an in-flight rebuild to their phase.
	Dates map[string]domain.RebuildState
}
