package itinerary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

type lookupCall struct {
	Origin, Destination string
	At                  time.Time
	Anchor              domain.TimeAnchor
}

// stubLookup returns durations keyed by "origin|destination".
type stubLookup struct {
	durations map[string]time.Duration
	errs      map[string]error
	calls     []lookupCall
}

func (s *stubLookup) Duration(_ context.Context, origin, dest string, at time.Time, anchor domain.TimeAnchor) (time.Duration, error) {
	s.calls = append(s.calls, lookupCall{origin, dest, at, anchor})
	key := origin + "|" + dest
	if err, ok := s.errs[key]; ok {
		return 0, err
	}
	if d, ok := s.durations[key]; ok {
		return d, nil
	}
	return 0, domain.ErrNoRoute
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("seg-%d", n)
	}
}

func at(hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2025-03-10 "+hhmm, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func event(id, title, location, start, end string) domain.LocatedEvent {
	return domain.LocatedEvent{
		ID:       id,
		Title:    title,
		Location: location,
		Start:    at(start),
		End:      at(end),
		Date:     "2025-03-10",
	}
}

const home = "1 Home Rd"

func options() Options {
	return Options{
		HomeAddress: home,
		MaxDuration: 3 * time.Hour,
		Location:    time.UTC,
		NewID:       sequentialIDs(),
	}
}

func TestSynthesize_Empty(t *testing.T) {
	lookup := &stubLookup{}

	segs := Synthesize(context.Background(), lookup, nil, options())

	assert.Nil(t, segs)
	assert.Empty(t, lookup.calls)
}

func TestSynthesize_SingleStopRoundTrip(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		home + "|100 Main St": 1200 * time.Second,
		"100 Main St|" + home: 1000 * time.Second,
	}}
	events := []domain.LocatedEvent{event("e1", "Dentist", "100 Main St", "09:00", "10:00")}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 2)

	out := segs[0]
	assert.Equal(t, "seg-1", out.ID)
	assert.Equal(t, "Home > Dentist", out.Title)
	assert.Equal(t, at("08:30"), out.Start)
	assert.Equal(t, at("09:00"), out.End)
	assert.Equal(t, home, out.Origin)
	assert.Equal(t, "100 Main St", out.Destination)
	assert.Equal(t, "2025-03-10", out.Date)

	back := segs[1]
	assert.Equal(t, "Dentist > Home", back.Title)
	assert.Equal(t, at("10:00"), back.Start)
	assert.Equal(t, at("10:30"), back.End)
	assert.Equal(t, "100 Main St", back.Origin)
	assert.Equal(t, home, back.Destination)

	require.Len(t, lookup.calls, 2)
	assert.Equal(t, domain.ArriveBy, lookup.calls[0].Anchor)
	assert.Equal(t, at("09:00"), lookup.calls[0].At)
	assert.Equal(t, domain.DepartAt, lookup.calls[1].Anchor)
	assert.Equal(t, at("10:00"), lookup.calls[1].At)
}

func TestSynthesize_EquivalentConsecutiveStops(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		home + "|123 Main St":    10 * time.Minute,
		"123 main street|" + home: 10 * time.Minute,
	}}
	events := []domain.LocatedEvent{
		event("e1", "Standup", "123 Main St", "09:00", "09:30"),
		event("e2", "Review", "123 main street", "10:00", "11:00"),
	}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 2)
	assert.Equal(t, "Home > Standup", segs[0].Title)
	assert.Equal(t, "Review > Home", segs[1].Title)
	for _, c := range lookup.calls {
		assert.NotEqual(t, "123 Main St|123 main street", c.Origin+"|"+c.Destination)
	}
}

func TestSynthesize_OverCapDropsLeg(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		home + "|Far Away": 4 * time.Hour,
		"Far Away|" + home: 4 * time.Hour,
	}}
	events := []domain.LocatedEvent{event("e1", "Conference", "Far Away", "09:00", "17:00")}

	segs := Synthesize(context.Background(), lookup, events, options())

	assert.Empty(t, segs)
	assert.Len(t, lookup.calls, 2)
}

func TestSynthesize_LookupFailureFailsOpen(t *testing.T) {
	lookup := &stubLookup{
		durations: map[string]time.Duration{"B St|" + home: 5 * time.Minute},
		errs:      map[string]error{home + "|B St": errors.New("connection reset")},
	}
	events := []domain.LocatedEvent{event("e1", "Gym", "B St", "07:00", "08:00")}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 1)
	assert.Equal(t, "Gym > Home", segs[0].Title)
	assert.Equal(t, at("08:15"), segs[0].End)
}

func TestSynthesize_StopAtHome(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		"1 Home Rd, Springfield|100 Main St": 20 * time.Minute,
		"100 Main St|" + home:     20 * time.Minute,
	}}
	events := []domain.LocatedEvent{
		event("e1", "Plumber", "1 Home Rd, Springfield", "08:00", "09:00"),
		event("e2", "Lunch", "100 Main St", "12:00", "13:00"),
	}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 2)
	assert.Equal(t, "Home > Lunch", segs[0].Title)
	assert.Equal(t, "1 Home Rd, Springfield", segs[0].Origin)
	assert.Equal(t, at("11:30"), segs[0].Start)
	assert.Equal(t, "Lunch > Home", segs[1].Title)
}

func TestSynthesize_LastStopAtHomeHasNoReturnLeg(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		home + "|100 Main St":     20 * time.Minute,
		"100 Main St|1 home rd": 20 * time.Minute,
	}}
	events := []domain.LocatedEvent{
		event("e1", "Lunch", "100 Main St", "12:00", "13:00"),
		event("e2", "Delivery", "1 home rd", "15:00", "15:30"),
	}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 2)
	assert.Equal(t, "Home > Lunch", segs[0].Title)
	assert.Equal(t, "Lunch > Home", segs[1].Title)
	assert.Equal(t, at("14:30"), segs[1].Start)
	assert.Equal(t, at("15:00"), segs[1].End)
}

func TestSynthesize_LabelAdvancesWhenLegSkipped(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		"A Ave|B Blvd": 10 * time.Minute,
	}}
	events := []domain.LocatedEvent{
		event("e1", "First", "A Ave", "09:00", "10:00"),
		event("e2", "Second", "B Blvd", "11:00", "12:00"),
	}

	segs := Synthesize(context.Background(), lookup, events, options())

	require.Len(t, segs, 1)
	assert.Equal(t, "First > Second", segs[0].Title)
	assert.Equal(t, at("10:45"), segs[0].Start)
}

func TestSynthesize_DefaultIDsAreUnique(t *testing.T) {
	lookup := &stubLookup{durations: map[string]time.Duration{
		home + "|100 Main St": time.Minute,
		"100 Main St|" + home: time.Minute,
	}}
	opts := options()
	opts.NewID = nil
	events := []domain.LocatedEvent{event("e1", "Dentist", "100 Main St", "09:00", "10:00")}

	segs := Synthesize(context.Background(), lookup, events, opts)

	require.Len(t, segs, 2)
	assert.NotEmpty(t, segs[0].ID)
	assert.NotEqual(t, segs[0].ID, segs[1].ID)
}
