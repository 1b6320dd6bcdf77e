package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// DateRebuilder replaces one date's transit segments on the destination
// calendar and in the store with a fresh synthesis from stored events.
//
// Each date moves Idle -> Clearing -> Rebuilding -> Idle, or straight back
// to Idle after clearing when it has no located events. Rebuilds of the same
// date are serialised; different dates run independently.
type DateRebuilder struct {
	events   driven.EventStore
	transits driven.TransitStore
	dest     driven.CalendarDestination
	lookup   driven.TransitLookup

	optsMu sync.RWMutex
	opts   itinerary.Options

	locks   *keyedMutex
	stateMu sync.RWMutex
	states  map[string]domain.RebuildState

	now func() time.Time
}

// NewDateRebuilder creates a rebuilder.
func NewDateRebuilder(
	events driven.EventStore,
	transits driven.TransitStore,
	dest driven.CalendarDestination,
	lookup driven.TransitLookup,
	opts itinerary.Options,
) *DateRebuilder {
	return &DateRebuilder{
		events:   events,
		transits: transits,
		dest:     dest,
		lookup:   lookup,
		opts:     opts,
		locks:    newKeyedMutex(),
		states:   make(map[string]domain.RebuildState),
		now:      time.Now,
	}
}

// SetOptions replaces the synthesis options used by later rebuilds.
func (r *DateRebuilder) SetOptions(opts itinerary.Options) {
	r.optsMu.Lock()
	defer r.optsMu.Unlock()
	r.opts = opts
}

func (r *DateRebuilder) options() itinerary.Options {
	r.optsMu.RLock()
	defer r.optsMu.RUnlock()
	return r.opts
}

// State returns the current phase of a date.
func (r *DateRebuilder) State(date string) domain.RebuildState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	if s, ok := r.states[date]; ok {
		return s
	}
	return domain.RebuildIdle
}

// ActiveStates returns the dates with a rebuild in flight.
func (r *DateRebuilder) ActiveStates() map[string]domain.RebuildState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	out := make(map[string]domain.RebuildState, len(r.states))
	for k, v := range r.states {
		out[k] = v
	}
	return out
}

func (r *DateRebuilder) setState(date string, s domain.RebuildState) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if s == domain.RebuildIdle {
		delete(r.states, date)
		return
	}
	r.states[date] = s
}

// Rebuild clears and regenerates the transit segments of one date.
// Every failure is logged and recorded in the result; none is returned.
func (r *DateRebuilder) Rebuild(ctx context.Context, date string) (result domain.RebuildResult) {
	result = domain.RebuildResult{Date: date, StartedAt: r.now()}

	opts := r.options()
	if _, err := domain.ParseDate(date, opts.Location); err != nil {
		result.AddError(err)
		result.EndedAt = r.now()
		return result
	}

	unlock := r.locks.Lock(date)
	defer unlock()
	defer r.setState(date, domain.RebuildIdle)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("rebuild %s panicked: %v", date, p)
			result.AddError(fmt.Errorf("panic: %v", p))
		}
		result.EndedAt = r.now()
	}()

	logger.Info("rebuilding transit events for %s", date)

	r.setState(date, domain.RebuildClearing)
	r.clear(ctx, date, &result)

	events, err := r.events.ListByDate(ctx, date)
	if err != nil {
		logger.Error("listing events for %s: %v", date, err)
		result.AddError(fmt.Errorf("list events: %w", err))
		return result
	}
	result.Events = len(events)

	if len(events) == 0 {
		n, err := r.events.DeleteByDate(ctx, date)
		if err != nil {
			logger.Warn("cleaning orphaned events for %s: %v", date, err)
			result.AddError(fmt.Errorf("orphan cleanup: %w", err))
		} else if n > 0 {
			logger.Info("cleaned up %d orphaned event records for %s", n, date)
		}
		result.Orphaned = true
		logger.Info("no located events on %s", date)
		return result
	}

	r.setState(date, domain.RebuildRebuilding)
	segments := itinerary.Synthesize(ctx, r.lookup, events, opts)
	result.Segments = len(segments)

	for i := range segments {
		seg := &segments[i]
		// A leg that starts before midnight still belongs to the date it was built for.
		seg.Date = date
		seg.CreatedAt = r.now()
		if err := r.transits.Save(ctx, seg); err != nil {
			logger.Error("saving transit segment %q: %v", seg.Title, err)
			result.AddError(fmt.Errorf("save segment %s: %w", seg.ID, err))
		}
		if err := r.dest.CreateTransitEvent(ctx, *seg); err != nil {
			logger.Error("creating transit event %q: %v", seg.Title, err)
			result.AddError(fmt.Errorf("create event %s: %w", seg.ID, err))
			continue
		}
		result.Created++
		logger.Info("created transit event %q (%s - %s)", seg.Title,
			seg.Start.Format("15:04"), seg.End.Format("15:04"))
	}

	logger.Info("rebuilt %s: %d events, %d of %d segments created", date, result.Events, result.Created, result.Segments)
	return result
}

// clear removes the date's segments remotely and locally. The calendar is
// cleared by identity first, so legs that start on a neighbouring day go
// too, then by start date for events the store does not know about. Legs
// of the neighbouring dates are left alone. The remote and local deletes
// are independent: one failing does not stop the other.
func (r *DateRebuilder) clear(ctx context.Context, date string, result *domain.RebuildResult) {
	var errs []error
	stored, err := r.transits.ListByDate(ctx, date)
	if err != nil {
		errs = append(errs, fmt.Errorf("list stored segments: %w", err))
	}
	for _, seg := range stored {
		if err := r.dest.DeleteTransitEvent(ctx, seg); err != nil {
			errs = append(errs, err)
			continue
		}
		result.RemoteCleared++
	}

	n, err := r.dest.DeleteTransitEventsForDate(ctx, date, r.neighbourIDs(ctx, date)...)
	result.RemoteCleared += n
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		logger.Error("deleting transit events from calendar for %s: %v", date, err)
		result.AddError(fmt.Errorf("clear calendar: %w", err))
	}
	logger.Debug("deleted %d transit events from calendar for %s", result.RemoteCleared, date)

	n, err = r.transits.DeleteByDate(ctx, date)
	if err != nil {
		logger.Error("deleting stored transit segments for %s: %v", date, err)
		result.AddError(fmt.Errorf("clear store: %w", err))
	}
	result.LocalCleared = n
	logger.Debug("deleted %d stored transit segments for %s", n, date)
}

// neighbourIDs lists the stored segments of the days either side of date.
// Their legs can start on date when they cross midnight.
func (r *DateRebuilder) neighbourIDs(ctx context.Context, date string) []string {
	var ids []string
	for _, offset := range []int{-1, 1} {
		day, err := domain.AddDays(date, offset)
		if err != nil {
			continue
		}
		segs, err := r.transits.ListByDate(ctx, day)
		if err != nil {
			logger.Warn("listing transit segments for %s: %v", day, err)
			continue
		}
		for _, seg := range segs {
			ids = append(ids, seg.ID)
		}
	}
	return ids
}
