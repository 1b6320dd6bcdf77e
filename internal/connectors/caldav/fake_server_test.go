package caldav

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakeServer is an in-memory CalDAV collection at /cal/.
type fakeServer struct {
	t *testing.T

	mu        sync.Mutex
	resources map[string]string // href -> calendar data
	requests  []string
	reportErr int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{t: t, resources: make(map[string]string)}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (f *fakeServer) put(href, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[href] = data
}

func (f *fakeServer) hrefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.resources))
	for h := range f.resources {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if user, pass, ok := r.BasicAuth(); !ok || user != "alice" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case "PROPFIND":
		if r.Header.Get("Depth") != "0" {
			f.t.Errorf("PROPFIND depth = %q", r.Header.Get("Depth"))
		}
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, `<?xml version="1.0"?><d:multistatus xmlns:d="DAV:"><d:response><d:href>/cal/</d:href>`+
			`<d:propstat><d:prop><d:displayname>Work</d:displayname></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat>`+
			`</d:response></d:multistatus>`)
	case "REPORT":
		if f.reportErr != 0 {
			w.WriteHeader(f.reportErr)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var probe struct {
			XMLName xml.Name
		}
		if err := xml.Unmarshal(body, &probe); err != nil || probe.XMLName.Local != "calendar-query" {
			f.t.Errorf("unexpected REPORT body: %s", body)
		}
		w.WriteHeader(http.StatusMultiStatus)
		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0"?><d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">`)
		for href, data := range f.resources {
			fmt.Fprintf(&sb, `<d:response><d:href>%s</d:href><d:propstat><d:prop><d:getetag>"1"</d:getetag>`+
				`<c:calendar-data>%s</c:calendar-data></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>`,
				href, html.EscapeString(data))
		}
		sb.WriteString(`</d:multistatus>`)
		fmt.Fprint(w, sb.String())
	case http.MethodPut:
		if _, exists := f.resources[r.URL.Path]; exists && r.Header.Get("If-None-Match") == "*" {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.resources[r.URL.Path] = string(body)
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		if _, exists := f.resources[r.URL.Path]; !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.resources, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func vevent(uid, extra string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nBEGIN:VEVENT\r\nUID:" + uid + "\r\n" +
		"DTSTAMP:20250301T000000Z\r\n" + extra + "END:VEVENT\r\nEND:VCALENDAR\r\n"
}
