package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/transitsync/internal/connectors/google"
	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// fakeAPI serves the subset of the Calendar v3 REST API the connector uses.
type fakeAPI struct {
	mu       sync.Mutex
	events   map[string]*calendar.Event
	status   int // forced status for every request when non-zero
	deletes  []string
	inserted []*calendar.Event
}

func newFakeAPI(t *testing.T) (*fakeAPI, *calendar.Service) {
	t.Helper()
	fake := &fakeAPI{events: make(map[string]*calendar.Event)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})
	svc, err := google.NewCalendarService(t.Context(), ts,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return fake, svc
}

func (f *fakeAPI) add(ev *calendar.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[ev.Id] = ev
}

func (f *fakeAPI) fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// state returns copies of the recorded inserts, deletes and remaining IDs.
func (f *fakeAPI) state() (inserted []*calendar.Event, deletes, remaining []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.events {
		remaining = append(remaining, id)
	}
	return append(inserted, f.inserted...), append(deletes, f.deletes...), remaining
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		writeError(w, f.status)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/calendars/"), "/"), "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, &calendar.Calendar{Id: parts[0], Summary: "Transit"})
	case len(parts) == 2 && r.Method == http.MethodGet:
		f.list(w, r)
	case len(parts) == 2 && r.Method == http.MethodPost:
		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		if _, exists := f.events[ev.Id]; exists {
			writeError(w, http.StatusConflict)
			return
		}
		f.events[ev.Id] = &ev
		f.inserted = append(f.inserted, &ev)
		writeJSON(w, &ev)
	case len(parts) == 3 && r.Method == http.MethodDelete:
		if _, exists := f.events[parts[2]]; !exists {
			writeError(w, http.StatusGone)
			return
		}
		delete(f.events, parts[2])
		f.deletes = append(f.deletes, parts[2])
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound)
	}
}

// list filters by overlap with [timeMin, timeMax) and pages by maxResults.
func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minT, _ := time.Parse(time.RFC3339, q.Get("timeMin"))
	maxT, _ := time.Parse(time.RFC3339, q.Get("timeMax"))

	var matched []*calendar.Event
	for _, ev := range f.events {
		start, end := fakeTime(ev.Start), fakeTime(ev.End)
		if end.After(minT) && start.Before(maxT) {
			matched = append(matched, ev)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Id < matched[j].Id })

	offset, _ := strconv.Atoi(q.Get("pageToken"))
	size, _ := strconv.Atoi(q.Get("maxResults"))
	if size <= 0 {
		size = len(matched)
	}
	end := min(offset+size, len(matched))

	page := &calendar.Events{Items: matched[offset:end]}
	if end < len(matched) {
		page.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, page)
}

func fakeTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return t
	}
	t, _ := time.Parse(domain.DateLayout, dt.Date)
	return t
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}

func timed(id, summary, location string, start time.Time, length time.Duration) *calendar.Event {
	return &calendar.Event{
		Id:       id,
		Summary:  summary,
		Location: location,
		Start:    &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:      &calendar.EventDateTime{DateTime: start.Add(length).Format(time.RFC3339)},
	}
}
