package httpapi

import (
	"sort"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
)

type sweepJSON struct {
	Kind            string        `json:"kind"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	Fetched         int           `json:"fetched"`
	Changed         int           `json:"changed"`
	Deleted         int           `json:"deleted"`
	DirtyDates      []string      `json:"dirty_dates"`
	SegmentsCreated int           `json:"segments_created"`
	Failures        int           `json:"failures"`
	Rebuilds        []rebuildJSON `json:"rebuilds"`
}

type rebuildJSON struct {
	Date          string   `json:"date"`
	RemoteCleared int      `json:"remote_cleared"`
	LocalCleared  int      `json:"local_cleared"`
	Events        int      `json:"events"`
	Segments      int      `json:"segments"`
	Created       int      `json:"created"`
	Orphaned      bool     `json:"orphaned,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

type dateStateJSON struct {
	Date  string `json:"date"`
	State string `json:"state"`
}

type statusJSON struct {
	Running   bool            `json:"running"`
	LastError string          `json:"last_error,omitempty"`
	LastSweep *sweepJSON      `json:"last_sweep,omitempty"`
	Dates     []dateStateJSON `json:"dates"`
}

type taskJSON struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Enabled     bool       `json:"enabled"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

type taskResultJSON struct {
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	Success        bool      `json:"success"`
	Skipped        bool      `json:"skipped,omitempty"`
	Error          string    `json:"error,omitempty"`
	ItemsProcessed int       `json:"items_processed"`
}

func sweepResponse(r *driving.SweepResult) *sweepJSON {
	if r == nil {
		return nil
	}
	out := &sweepJSON{
		Kind:            r.Kind,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		Fetched:         r.Fetched,
		Changed:         r.Changed,
		Deleted:         r.Deleted,
		DirtyDates:      append([]string{}, r.DirtyDates...),
		SegmentsCreated: r.SegmentsCreated(),
		Failures:        r.Failures(),
		Rebuilds:        make([]rebuildJSON, 0, len(r.Rebuilds)),
	}
	for _, rb := range r.Rebuilds {
		out.Rebuilds = append(out.Rebuilds, rebuildJSON{
			Date:          rb.Date,
			RemoteCleared: rb.RemoteCleared,
			LocalCleared:  rb.LocalCleared,
			Events:        rb.Events,
			Segments:      rb.Segments,
			Created:       rb.Created,
			Orphaned:      rb.Orphaned,
			Errors:        rb.Errors,
		})
	}
	return out
}

func statusResponse(s *driving.SyncStatus) statusJSON {
	out := statusJSON{Dates: []dateStateJSON{}}
	if s == nil {
		return out
	}
	out.Running = s.Running
	out.LastError = s.LastError
	out.LastSweep = sweepResponse(s.LastSweep)
	for date, state := range s.Dates {
		out.Dates = append(out.Dates, dateStateJSON{Date: date, State: string(state)})
	}
	sort.Slice(out.Dates, func(i, j int) bool { return out.Dates[i].Date < out.Dates[j].Date })
	return out
}

func newTaskJSON(t *domain.ScheduledTask) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Name:        t.Name,
		Schedule:    t.Schedule,
		Enabled:     t.Enabled,
		LastRun:     optionalTime(t.LastRun),
		NextRun:     optionalTime(t.NextRun),
		LastSuccess: optionalTime(t.LastSuccess),
		LastError:   t.LastError,
	}
}

func newTaskResultJSON(r *domain.TaskResult) taskResultJSON {
	return taskResultJSON{
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		Success:        r.Success,
		Skipped:        r.Skipped,
		Error:          r.Error,
		ItemsProcessed: r.ItemsProcessed,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
