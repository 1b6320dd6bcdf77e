package caldav

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

func newTestClient(t *testing.T, srv string) *Client {
	t.Helper()
	c, err := NewClient(Config{URL: srv + "/cal", Username: "alice", Password: "secret"})
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com/cal", "not a url", "https://"} {
		_, err := NewClient(Config{URL: raw})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}

func TestNewClient_AddsTrailingSlash(t *testing.T) {
	c, err := NewClient(Config{URL: "https://dav.example.com/cal"})
	require.NoError(t, err)
	assert.Equal(t, "https://dav.example.com/cal/", c.URL())
}

func TestSource_FetchLocatedEvents(t *testing.T) {
	fake, srv := newFakeServer(t)
	fake.put("/cal/a.ics", vevent("a", "SUMMARY:Dentist\r\nLOCATION:5 Oak Ave   Springfield\r\n"+
		"DTSTART:20250310T090000Z\r\nDTEND:20250310T100000Z\r\n"))
	fake.put("/cal/b.ics", vevent("b", "SUMMARY:Gym\r\nLOCATION:9 Fit St\r\n"+
		"DTSTART;TZID=America/New_York:20250310T070000\r\nDTEND;TZID=America/New_York:20250310T080000\r\n"))
	fake.put("/cal/allday.ics", vevent("allday", "SUMMARY:Holiday\r\nLOCATION:Beach\r\n"+
		"DTSTART;VALUE=DATE:20250310\r\nDTEND;VALUE=DATE:20250311\r\n"))
	fake.put("/cal/noloc.ics", vevent("noloc", "SUMMARY:Call\r\nDTSTART:20250310T120000Z\r\n"))
	fake.put("/cal/optout.ics", vevent("optout", "SUMMARY:Lunch\r\nLOCATION:Cafe\r\n"+
		"DESCRIPTION:No location needed\r\nDTSTART:20250310T120000Z\r\n"))
	fake.put("/cal/floating.ics", vevent("floating", "SUMMARY:Meeting\r\nLOCATION:1 Office Pl\r\n"+
		"DTSTART:20250310T150000\r\n"))
	fake.put("/cal/outside.ics", vevent("outside", "SUMMARY:Later\r\nLOCATION:Far\r\n"+
		"DTSTART:20250320T150000Z\r\n"))
	fake.put("/cal/broken.ics", "not a calendar")

	source := NewSource(newTestClient(t, srv.URL), time.UTC)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	events, err := source.FetchLocatedEvents(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"a", "b", "floating"}, ids)

	assert.Equal(t, "5 Oak Ave Springfield", events[0].Location)
	assert.Equal(t, "2025-03-10", events[0].Date)
	assert.Equal(t, srv.URL+"/cal/", events[0].CalendarID)
	assert.True(t, events[1].Start.Equal(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)), "TZID honoured")
	assert.Equal(t, time.Hour, events[2].End.Sub(events[2].Start), "missing DTEND defaults to an hour")
}

func TestSource_RecurrenceInstancesAreDistinct(t *testing.T) {
	fake, srv := newFakeServer(t)
	data := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:weekly\r\nRECURRENCE-ID:20250310T090000Z\r\nSUMMARY:Class\r\nLOCATION:2 School Ln\r\n" +
		"DTSTART:20250310T090000Z\r\nDTEND:20250310T100000Z\r\nEND:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nUID:weekly\r\nRECURRENCE-ID:20250317T090000Z\r\nSUMMARY:Class\r\nLOCATION:2 School Ln\r\n" +
		"DTSTART:20250317T090000Z\r\nDTEND:20250317T100000Z\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	fake.put("/cal/weekly.ics", data)

	source := NewSource(newTestClient(t, srv.URL), time.UTC)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	events, err := source.FetchLocatedEvents(context.Background(), start, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "weekly/20250310T090000Z", events[0].ID)
	assert.Equal(t, "weekly/20250317T090000Z", events[1].ID)
}

func TestSource_QueryError(t *testing.T) {
	fake, srv := newFakeServer(t)
	fake.reportErr = http.StatusInternalServerError

	source := NewSource(newTestClient(t, srv.URL), time.UTC)
	_, err := source.FetchLocatedEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "REPORT", apiErr.Method)
}

func TestValidate(t *testing.T) {
	_, srv := newFakeServer(t)

	assert.NoError(t, NewSource(newTestClient(t, srv.URL), time.UTC).Validate(context.Background()))

	bad, err := NewClient(Config{URL: srv.URL + "/cal", Username: "alice", Password: "wrong"})
	require.NoError(t, err)
	err = NewDestination(bad, time.UTC).Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnectorValidation)
	assert.True(t, IsUnauthorized(err))
}

func TestDestination_CreateAndDelete(t *testing.T) {
	fake, srv := newFakeServer(t)
	dest := NewDestination(newTestClient(t, srv.URL), time.UTC)
	dest.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	seg := domain.TransitSegment{
		ID: "seg1", Title: "Home > Dentist", Origin: "1 Home Rd", Destination: "5 Oak Ave",
		Start: at, End: at.Add(30 * time.Minute), Date: "2025-03-10",
	}
	require.NoError(t, dest.CreateTransitEvent(ctx, seg))
	require.NoError(t, dest.CreateTransitEvent(ctx, domain.TransitSegment{
		ID: "seg2", Title: "Dentist > Home", Origin: "5 Oak Ave", Destination: "1 Home Rd",
		Start: at.Add(2 * time.Hour), End: at.Add(150 * time.Minute), Date: "2025-03-10",
	}))
	require.NoError(t, dest.CreateTransitEvent(ctx, domain.TransitSegment{
		ID: "seg3", Title: "Home > Gym", Origin: "1 Home Rd", Destination: "9 Fit St",
		Start: at.Add(24 * time.Hour), End: at.Add(25 * time.Hour), Date: "2025-03-11",
	}))
	fake.put("/cal/holiday.ics", vevent("holiday", "SUMMARY:Holiday\r\nDTSTART;VALUE=DATE:20250310\r\n"))

	assert.Equal(t, []string{"/cal/holiday.ics", "/cal/seg1.ics", "/cal/seg2.ics", "/cal/seg3.ics"}, fake.hrefs())

	body := fake.resources["/cal/seg1.ics"]
	assert.Contains(t, body, "SUMMARY:Home > Dentist")
	assert.Contains(t, body, "DTSTART:20250310T083000Z")
	assert.Contains(t, body, "DTEND:20250310T090000Z")
	assert.Contains(t, body, "maps.apple.com")
	assert.Contains(t, body, ProductID)

	n, err := dest.DeleteTransitEventsForDate(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"/cal/holiday.ics", "/cal/seg3.ics"}, fake.hrefs(), "all-day and other dates survive")

	n, err = dest.DeleteTransitEventsForDate(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = dest.DeleteTransitEventsForDate(ctx, "10/03/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDestination_LegCrossingMidnight(t *testing.T) {
	fake, srv := newFakeServer(t)
	dest := NewDestination(newTestClient(t, srv.URL), time.UTC)
	ctx := context.Background()

	at := time.Date(2025, 3, 9, 23, 45, 0, 0, time.UTC)
	late := domain.TransitSegment{
		ID: "late", Title: "Home > Night Shift", Start: at, End: at.Add(30 * time.Minute), Date: "2025-03-10",
	}
	require.NoError(t, dest.CreateTransitEvent(ctx, late))

	n, err := dest.DeleteTransitEventsForDate(ctx, "2025-03-09", "late")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"/cal/late.ics"}, fake.hrefs(), "a kept segment survives its start date's clear")

	n, err = dest.DeleteTransitEventsForDate(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Zero(t, n, "the leg does not start on its own date")

	require.NoError(t, dest.DeleteTransitEvent(ctx, late))
	assert.Empty(t, fake.hrefs())
	require.NoError(t, dest.DeleteTransitEvent(ctx, late), "already gone")

	assert.ErrorIs(t, dest.DeleteTransitEvent(ctx, domain.TransitSegment{}), domain.ErrInvalidInput)
}

func TestDestination_CreateConflict(t *testing.T) {
	_, srv := newFakeServer(t)
	dest := NewDestination(newTestClient(t, srv.URL), time.UTC)
	ctx := context.Background()

	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	seg := domain.TransitSegment{ID: "dup", Title: "Home > Work", Start: at, End: at.Add(time.Hour)}
	require.NoError(t, dest.CreateTransitEvent(ctx, seg))

	err := dest.CreateTransitEvent(ctx, seg)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPreconditionFailed, apiErr.StatusCode)

	assert.ErrorIs(t, dest.CreateTransitEvent(ctx, domain.TransitSegment{}), domain.ErrInvalidInput)
}

func TestPropTime_DateIsAllDay(t *testing.T) {
	entries, err := parseEntries(vevent("x", "DTSTART:20250310\r\nLOCATION:Somewhere\r\n"), "", time.UTC)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].AllDay)
	assert.True(t, strings.HasPrefix(entries[0].Start.Format(time.RFC3339), "2025-03-10T00:00:00"))
}
