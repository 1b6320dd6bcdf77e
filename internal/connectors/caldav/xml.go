package caldav

import (
	"encoding/xml"
	"fmt"
	"time"
)

// icalUTC is the iCalendar UTC date-time layout used in time-range filters.
const icalUTC = "20060102T150405Z"

type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []response `xml:"DAV: response"`
}

type response struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Prop   prop   `xml:"DAV: prop"`
	Status string `xml:"DAV: status"`
}

type prop struct {
	DisplayName  string `xml:"DAV: displayname"`
	ETag         string `xml:"DAV: getetag"`
	CalendarData string `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

// Object is one calendar resource returned by a query.
type Object struct {
	Href string
	ETag string
	Data string
}

const propfindDisplayName = `<?xml version="1.0" encoding="utf-8"?>
<D:propfind xmlns:D="DAV:">
  <D:prop><D:displayname/></D:prop>
</D:propfind>`

// calendarQuery builds a REPORT body selecting VEVENTs that overlap
// [start, end). Recurring events are expanded by the server.
func calendarQuery(start, end time.Time) string {
	s := start.UTC().Format(icalUTC)
	e := end.UTC().Format(icalUTC)
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<C:calendar-query xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
  <D:prop>
    <D:getetag/>
    <C:calendar-data><C:expand start="%[1]s" end="%[2]s"/></C:calendar-data>
  </D:prop>
  <C:filter>
    <C:comp-filter name="VCALENDAR">
      <C:comp-filter name="VEVENT">
        <C:time-range start="%[1]s" end="%[2]s"/>
      </C:comp-filter>
    </C:comp-filter>
  </C:filter>
</C:calendar-query>`, s, e)
}

// objects flattens a multistatus into the resources that carry calendar data.
func (m *multistatus) objects() []Object {
	var out []Object
	for _, r := range m.Responses {
		for _, ps := range r.Propstats {
			if ps.Prop.CalendarData == "" {
				continue
			}
			out = append(out, Object{Href: r.Href, ETag: ps.Prop.ETag, Data: ps.Prop.CalendarData})
		}
	}
	return out
}

// displayName returns the first non-empty display name.
func (m *multistatus) displayName() string {
	for _, r := range m.Responses {
		for _, ps := range r.Propstats {
			if ps.Prop.DisplayName != "" {
				return ps.Prop.DisplayName
			}
		}
	}
	return ""
}
