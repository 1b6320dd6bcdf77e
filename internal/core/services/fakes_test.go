package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// fakeSource serves a fixed set of events.
type fakeSource struct {
	mu     sync.Mutex
	events []domain.LocatedEvent
	err    error
	calls  int
	block  chan struct{}
}

func (f *fakeSource) set(events ...domain.LocatedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
}

func (f *fakeSource) FetchLocatedEvents(ctx context.Context, start, end time.Time) ([]domain.LocatedEvent, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.LocatedEvent
	for _, ev := range f.events {
		if !ev.Start.Before(start) && ev.Start.Before(end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSource) Validate(context.Context) error { return nil }

// fakeDestination behaves like a dedicated calendar: events are keyed by
// segment ID and a date clear matches on the start time in UTC.
type fakeDestination struct {
	mu        sync.Mutex
	events    map[string]domain.TransitSegment
	deleteErr error
	createErr error
	deletes   []string
}

func newFakeDestination() *fakeDestination {
	return &fakeDestination{events: make(map[string]domain.TransitSegment)}
}

func (f *fakeDestination) CreateTransitEvent(_ context.Context, seg domain.TransitSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.events[seg.ID] = seg
	return nil
}

func (f *fakeDestination) DeleteTransitEvent(_ context.Context, seg domain.TransitSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.events, seg.ID)
	return nil
}

func (f *fakeDestination) DeleteTransitEventsForDate(_ context.Context, date string, keep ...string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, date)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	n := 0
	for id, seg := range f.events {
		if kept[id] || domain.DateOf(seg.Start, time.UTC) != date {
			continue
		}
		delete(f.events, id)
		n++
	}
	return n, nil
}

func (f *fakeDestination) Validate(context.Context) error { return nil }

// titles lists the titles of the events built for date.
func (f *fakeDestination) titles(date string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.events {
		if s.Date == date {
			out = append(out, s.Title)
		}
	}
	sort.Strings(out)
	return out
}

func (f *fakeDestination) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fixedLookup returns the same duration for every pair and counts calls.
type fixedLookup struct {
	mu       sync.Mutex
	duration time.Duration
	calls    int
}

func (f *fixedLookup) Duration(context.Context, string, string, time.Time, domain.TimeAnchor) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.duration == 0 {
		return 0, domain.ErrNoRoute
	}
	return f.duration, nil
}

func (f *fixedLookup) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingFingerprints fails every call.
type failingFingerprints struct {
	saves int
}

var errStoreDown = errors.New("store down")

func (f *failingFingerprints) Get(context.Context, string) (*domain.FingerprintRecord, error) {
	return nil, errStoreDown
}

func (f *failingFingerprints) Save(context.Context, *domain.FingerprintRecord) error {
	f.saves++
	return errStoreDown
}

func (f *failingFingerprints) Delete(context.Context, string) error { return errStoreDown }

func (f *failingFingerprints) ListByDate(context.Context, string) ([]domain.FingerprintRecord, error) {
	return nil, errStoreDown
}

func located(id, title, location string, start time.Time) domain.LocatedEvent {
	return domain.LocatedEvent{
		ID:       id,
		Title:    title,
		Location: location,
		Start:    start,
		End:      start.Add(time.Hour),
		Date:     domain.DateOf(start, time.UTC),
	}
}
