package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// Sweep kinds reported in SweepResult.Kind.
const (
	SweepCheck   = "check"
	SweepDaily   = "daily"
	SweepReset   = "reset"
	SweepRebuild = "rebuild"
)

// SyncOrchestrator drives the change sweeps. It ingests the look-forward
// window from the source calendar, works out which dates are dirty and
// hands each one to the DateRebuilder.
type SyncOrchestrator struct {
	source       driven.CalendarSource
	events       driven.EventStore
	fingerprints driven.FingerprintStore
	transits     driven.TransitStore
	changes      *ChangeDetector
	deletions    *DeletionDetector
	rebuilder    *DateRebuilder

	// pending holds dirty dates a cancelled sweep did not get to rebuild.
	pendingMu sync.Mutex
	pending   map[string]struct{}

	cfgMu       sync.RWMutex
	lookForward int
	loc         *time.Location

	// sweep is held by window sweeps; a sweep that cannot take it is skipped.
	sweep sync.Mutex

	// Status tracking
	mu        sync.RWMutex
	active    int
	lastSweep *driving.SweepResult
	lastError string

	now func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	source driven.CalendarSource,
	events driven.EventStore,
	fingerprints driven.FingerprintStore,
	transits driven.TransitStore,
	rebuilder *DateRebuilder,
	settings domain.Settings,
) *SyncOrchestrator {
	o := &SyncOrchestrator{
		source:       source,
		events:       events,
		fingerprints: fingerprints,
		transits:     transits,
		changes:      NewChangeDetector(fingerprints),
		deletions:    NewDeletionDetector(events, fingerprints),
		rebuilder:    rebuilder,
		pending:      make(map[string]struct{}),
		now:          time.Now,
	}
	o.UpdateSettings(settings)
	return o
}

// SynthesisOptions derives the itinerary options from settings.
func SynthesisOptions(s domain.Settings) itinerary.Options {
	return itinerary.Options{
		HomeAddress: s.HomeAddress,
		MaxDuration: s.MaxTransit,
		Location:    s.Location,
	}
}

// UpdateSettings applies engine settings to subsequent sweeps and rebuilds.
func (o *SyncOrchestrator) UpdateSettings(s domain.Settings) {
	o.cfgMu.Lock()
	o.lookForward = s.LookForwardDays
	o.loc = s.Location
	if o.loc == nil {
		o.loc = time.Local
	}
	o.cfgMu.Unlock()

	if o.rebuilder != nil {
		o.rebuilder.SetOptions(SynthesisOptions(s))
	}
}

// window returns the first and last date of the look-forward window.
func (o *SyncOrchestrator) window() (first, last string, loc *time.Location, err error) {
	o.cfgMu.RLock()
	days, loc := o.lookForward, o.loc
	o.cfgMu.RUnlock()

	first = domain.DateOf(o.now(), loc)
	last, err = domain.AddDays(first, days)
	return first, last, loc, err
}

// CheckForUpdates runs one change sweep over the look-forward window.
func (o *SyncOrchestrator) CheckForUpdates(ctx context.Context) (*driving.SweepResult, error) {
	if !o.sweep.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer o.sweep.Unlock()

	result := o.begin(SweepCheck)
	logger.Info("checking for calendar updates")

	dirty, err := o.ingest(ctx, result)
	if err != nil {
		return o.finish(result, err)
	}
	first, _, _, err := o.window()
	if err != nil {
		return o.finish(result, err)
	}
	o.addPending(dirty, first)
	o.rebuildAll(ctx, result, dirty)

	logger.Info("calendar update check complete: %d fetched, %d changed, %d deleted, %d dates rebuilt",
		result.Fetched, result.Changed, result.Deleted, len(result.DirtyDates))
	return o.finish(result, nil)
}

// ResetWindow refreshes stored events and rebuilds every date in the window.
func (o *SyncOrchestrator) ResetWindow(ctx context.Context) (*driving.SweepResult, error) {
	if !o.sweep.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer o.sweep.Unlock()

	result := o.begin(SweepReset)
	logger.Info("resetting all transit events")

	if _, err := o.ingest(ctx, result); err != nil {
		return o.finish(result, err)
	}

	first, _, _, err := o.window()
	if err != nil {
		return o.finish(result, err)
	}
	o.cfgMu.RLock()
	days := o.lookForward
	o.cfgMu.RUnlock()

	dates := make(map[string]struct{}, days+1)
	for i := 0; i <= days; i++ {
		d, err := domain.AddDays(first, i)
		if err != nil {
			return o.finish(result, err)
		}
		dates[d] = struct{}{}
	}
	o.rebuildAll(ctx, result, dates)

	return o.finish(result, nil)
}

// DailyUpdate rebuilds the date at the far edge of the window.
func (o *SyncOrchestrator) DailyUpdate(ctx context.Context) (*driving.SweepResult, error) {
	result := o.begin(SweepDaily)

	_, last, _, err := o.window()
	if err != nil {
		return o.finish(result, err)
	}
	logger.Info("running daily update for %s", last)
	o.rebuildAll(ctx, result, map[string]struct{}{last: {}})

	return o.finish(result, nil)
}

// RebuildDates rebuilds specific dates from stored events.
func (o *SyncOrchestrator) RebuildDates(ctx context.Context, dates []string) (*driving.SweepResult, error) {
	o.cfgMu.RLock()
	loc := o.loc
	o.cfgMu.RUnlock()

	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, err := domain.ParseDate(d, loc); err != nil {
			return nil, err
		}
		set[d] = struct{}{}
	}

	result := o.begin(SweepRebuild)
	o.rebuildAll(ctx, result, set)
	return o.finish(result, nil)
}

// CleanupOldData removes events and segments dated before today minus days.
// Fingerprint records are kept so recurring events that come back into the
// window are not treated as new.
func (o *SyncOrchestrator) CleanupOldData(ctx context.Context, days int) (*driving.CleanupResult, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: retention days must not be negative", domain.ErrInvalidInput)
	}
	today, _, _, err := o.window()
	if err != nil {
		return nil, err
	}
	cutoff, err := domain.AddDays(today, -days)
	if err != nil {
		return nil, err
	}

	result := &driving.CleanupResult{Cutoff: cutoff}
	var errs []error
	if result.EventsDeleted, err = o.events.DeleteBefore(ctx, cutoff); err != nil {
		errs = append(errs, fmt.Errorf("delete old events: %w", err))
	}
	if result.SegmentsDeleted, err = o.transits.DeleteBefore(ctx, cutoff); err != nil {
		errs = append(errs, fmt.Errorf("delete old segments: %w", err))
	}

	logger.Info("cleaned up data older than %s: %d events, %d segments",
		cutoff, result.EventsDeleted, result.SegmentsDeleted)
	return result, errors.Join(errs...)
}

// Status returns the current sweep state.
func (o *SyncOrchestrator) Status(_ context.Context) *driving.SyncStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := &driving.SyncStatus{
		Running:   o.active > 0,
		LastSweep: o.lastSweep,
		LastError: o.lastError,
	}
	if o.rebuilder != nil {
		status.Dates = o.rebuilder.ActiveStates()
	}
	return status
}

// ingest fetches the window, stores every event and returns the dirty dates.
func (o *SyncOrchestrator) ingest(ctx context.Context, result *driving.SweepResult) (map[string]struct{}, error) {
	first, last, loc, err := o.window()
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseDate(first, loc)
	if err != nil {
		return nil, err
	}
	_, end, err := domain.DayBounds(last, loc)
	if err != nil {
		return nil, err
	}

	fetched, err := o.source.FetchLocatedEvents(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	result.Fetched = len(fetched)

	dirty := make(map[string]struct{})
	current := make(map[string]struct{}, len(fetched))
	for i := range fetched {
		ev := &fetched[i]
		current[ev.ID] = struct{}{}
		if ev.Location == "" {
			continue
		}
		ev.Date = domain.DateOf(ev.Start, loc)

		// A moved event also dirties the date it left.
		if prev, err := o.events.Get(ctx, ev.ID); err == nil && prev.Date != ev.Date {
			dirty[prev.Date] = struct{}{}
		}

		ev.UpdatedAt = o.now()
		if err := o.events.Save(ctx, ev); err != nil {
			logger.Warn("saving event %s: %v", ev.ID, err)
		}

		if o.changes.RecordAndCheck(ctx, ev) {
			result.Changed++
			dirty[ev.Date] = struct{}{}
			logger.Info("event %q on %s has changed, will process", ev.Title, ev.Date)
		} else {
			logger.Debug("event %q on %s unchanged, skipping", ev.Title, ev.Date)
		}
	}

	deleted, err := o.deletions.FindDeleted(ctx, current, first, last)
	if err != nil {
		logger.Error("detecting deleted events: %v", err)
	}
	for _, d := range deleted {
		result.Deleted++
		dirty[d] = struct{}{}
		logger.Info("detected deleted events on %s, will process", d)
	}

	return dirty, nil
}

func (o *SyncOrchestrator) rebuildAll(ctx context.Context, result *driving.SweepResult, dates map[string]struct{}) {
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	result.DirtyDates = sorted

	for i, d := range sorted {
		if ctx.Err() != nil {
			o.postpone(ctx, sorted[i:])
			return
		}
		result.Rebuilds = append(result.Rebuilds, o.rebuilder.Rebuild(ctx, d))
		if ctx.Err() != nil {
			o.postpone(ctx, sorted[i:])
			return
		}
		o.pendingMu.Lock()
		delete(o.pending, d)
		o.pendingMu.Unlock()
	}
}

// postpone keeps dates a cancelled sweep did not finish for the next sweep.
// Their fingerprints are dropped as well, so the dates are still found
// dirty after a restart.
func (o *SyncOrchestrator) postpone(ctx context.Context, dates []string) {
	logger.Warn("sweep cancelled, %d dates left to rebuild: %v", len(dates), dates)
	ctx = context.WithoutCancel(ctx)

	o.pendingMu.Lock()
	for _, d := range dates {
		o.pending[d] = struct{}{}
	}
	o.pendingMu.Unlock()

	for _, d := range dates {
		records, err := o.fingerprints.ListByDate(ctx, d)
		if err != nil {
			logger.Warn("listing fingerprints for %s: %v", d, err)
			continue
		}
		for _, rec := range records {
			if err := o.fingerprints.Delete(ctx, rec.ID); err != nil {
				logger.Warn("dropping fingerprint %s: %v", rec.ID, err)
			}
		}
	}
}

// addPending merges the dates left over from cancelled sweeps into dirty.
// Dates before first have dropped out of the window and are forgotten.
func (o *SyncOrchestrator) addPending(dirty map[string]struct{}, first string) {
	o.pendingMu.Lock()
	defer o.pendingMu.Unlock()
	for d := range o.pending {
		if d < first {
			delete(o.pending, d)
			continue
		}
		if _, ok := dirty[d]; !ok {
			logger.Info("retrying rebuild of %s left over from a cancelled sweep", d)
		}
		dirty[d] = struct{}{}
	}
}

func (o *SyncOrchestrator) begin(kind string) *driving.SweepResult {
	o.mu.Lock()
	o.active++
	o.mu.Unlock()
	return &driving.SweepResult{Kind: kind, StartedAt: o.now()}
}

func (o *SyncOrchestrator) finish(result *driving.SweepResult, err error) (*driving.SweepResult, error) {
	result.EndedAt = o.now()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.active--
	o.lastSweep = result
	if err != nil {
		o.lastError = err.Error()
		logger.Error("%s sweep failed: %v", result.Kind, err)
		return result, err
	}
	o.lastError = ""
	return result, nil
}
