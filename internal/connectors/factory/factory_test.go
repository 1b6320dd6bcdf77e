package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/transitsync/internal/connectors/caldav"
	googlecal "github.com/custodia-labs/transitsync/internal/connectors/google/calendar"
	"github.com/custodia-labs/transitsync/internal/connectors/here"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

func testSettings() *domain.Settings {
	s := domain.DefaultSettings()
	s.HomeAddress = "1 Home St"
	s.Location = time.UTC
	s.Source = domain.CalendarSettings{Type: domain.CalendarCalDAV, URL: "https://dav.example.com/personal"}
	s.Destination = domain.CalendarSettings{Type: domain.CalendarCalDAV, URL: "https://dav.example.com/transit"}
	s.Transit.APIKey = "key"
	return &s
}

func TestFactory_CalDAV(t *testing.T) {
	f := New()
	s := testSettings()

	src, err := f.CreateSource(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &caldav.Source{}, src)

	dst, err := f.CreateDestination(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &caldav.Destination{}, dst)

	s.Source.URL = "ftp://nope"
	_, err = f.CreateSource(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFactory_Google(t *testing.T) {
	f := New()
	s := testSettings()
	s.Source = domain.CalendarSettings{Type: domain.CalendarGoogle}
	s.Destination = domain.CalendarSettings{Type: domain.CalendarGoogle, CalendarID: "transit@group.calendar.google.com"}

	_, err := f.CreateSource(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s.Google = domain.GoogleSettings{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"}
	src, err := f.CreateSource(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &googlecal.Source{}, src)

	dst, err := f.CreateDestination(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &googlecal.Destination{}, dst)
}

func TestFactory_UnsupportedCalendar(t *testing.T) {
	s := testSettings()
	s.Source.Type = "exchange"
	_, err := New().CreateSource(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	s.Destination.Type = "outlook"
	_, err = New().CreateDestination(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestFactory_TransitLookup(t *testing.T) {
	f := New()
	s := testSettings()

	lookup, err := f.CreateTransitLookup(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &here.Client{}, lookup)

	s.Transit.Provider = ""
	_, err = f.CreateTransitLookup(context.Background(), s)
	require.NoError(t, err)

	s.Transit.APIKey = ""
	_, err = f.CreateTransitLookup(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s.Transit.Provider = "teleport"
	_, err = f.CreateTransitLookup(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

type stubLookup struct{}

func (stubLookup) Duration(context.Context, string, string, time.Time, domain.TimeAnchor) (time.Duration, error) {
	return time.Minute, nil
}

func TestFactory_Register(t *testing.T) {
	f := New()
	f.RegisterTransit("stub", func(context.Context, *domain.Settings) (driven.TransitLookup, error) {
		return stubLookup{}, nil
	})

	s := testSettings()
	s.Transit.Provider = "stub"
	lookup, err := f.CreateTransitLookup(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, stubLookup{}, lookup)

	assert.Equal(t, []string{"caldav", "google"}, f.SupportedTypes())
}
