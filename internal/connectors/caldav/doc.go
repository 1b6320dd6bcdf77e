// Package caldav reads appointments from and writes transit events to CalDAV
// calendar collections.
//
// The client speaks the small subset of WebDAV/CalDAV the engine needs:
// PROPFIND for validation, REPORT calendar-query with a time range for
// reads, PUT for new events and DELETE for clearing a date. Calendar bodies
// are parsed and built with github.com/arran4/golang-ical.
//
// The configured URL must point at a calendar collection, not a principal;
// no discovery is attempted.
package caldav
