package caldav

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/custodia-labs/transitsync/internal/connectors"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
)

// ProductID identifies calendars written by this package.
const ProductID = "-//transitsync//Transit Calendar//EN"

// parseEntries parses an iCalendar body into entries. Floating times are
// read in loc. A VEVENT that cannot be read is skipped; only an unreadable
// body is an error.
func parseEntries(data string, calendarID string, loc *time.Location) ([]connectors.Entry, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("caldav: parse calendar: %w", err)
	}

	var entries []connectors.Entry
	for _, ve := range cal.Events() {
		entry, err := parseEntry(ve, loc)
		if err != nil {
			continue
		}
		entry.CalendarID = calendarID
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(ve *ical.VEvent, loc *time.Location) (connectors.Entry, error) {
	var e connectors.Entry

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return e, errors.New("missing UID")
	}
	e.ID = uid.Value
	// Expanded recurrence instances share the UID of their master.
	if rid := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); rid != nil && rid.Value != "" {
		e.ID += "/" + rid.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		e.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}

	start, allDay, err := propTime(ve.GetProperty(ical.ComponentPropertyDtStart), loc)
	if err != nil {
		return e, fmt.Errorf("DTSTART: %w", err)
	}
	e.Start = start
	e.AllDay = allDay

	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, endAllDay, err := propTime(p, loc)
		if err != nil {
			return e, fmt.Errorf("DTEND: %w", err)
		}
		e.End = end
		e.AllDay = e.AllDay || endAllDay
	}
	return e, nil
}

// propTime reads a DATE or DATE-TIME property. allDay reports a DATE value.
func propTime(p *ical.IANAProperty, loc *time.Location) (t time.Time, allDay bool, err error) {
	if p == nil || p.Value == "" {
		return time.Time{}, false, errors.New("missing value")
	}
	v := strings.TrimSpace(p.Value)

	if vs := p.ICalParameters["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}
	if !strings.Contains(v, "T") {
		allDay = true
	}
	if allDay {
		t, err = time.ParseInLocation("20060102", v, loc)
		return t, true, err
	}

	if strings.HasSuffix(v, "Z") {
		t, err = time.Parse(icalUTC, v)
		return t, false, err
	}

	zone := loc
	if tz := p.ICalParameters["TZID"]; len(tz) > 0 {
		if l, lerr := time.LoadLocation(strings.Trim(tz[0], `"`)); lerr == nil {
			zone = l
		}
	}
	t, err = time.ParseInLocation("20060102T150405", v, zone)
	return t, false, err
}

// buildTransitEvent renders a segment as a single-event calendar body.
// The description carries a directions link between the two stops.
func buildTransitEvent(seg domain.TransitSegment, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)

	ev := cal.AddEvent(seg.ID)
	ev.SetDtStampTime(stamp)
	ev.SetSummary(seg.Title)
	ev.SetDescription(itinerary.DirectionsURL(seg.Origin, seg.Destination))
	ev.SetStartAt(seg.Start)
	ev.SetEndAt(seg.End)

	return cal.Serialize()
}
