// Package factory builds calendar and transit adapters from settings.
package factory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/transitsync/internal/connectors/caldav"
	"github.com/custodia-labs/transitsync/internal/connectors/google"
	googlecal "github.com/custodia-labs/transitsync/internal/connectors/google/calendar"
	"github.com/custodia-labs/transitsync/internal/connectors/here"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// SourceBuilder creates a source adapter for one calendar.
type SourceBuilder func(ctx context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarSource, error)

// DestinationBuilder creates a destination adapter for one calendar.
type DestinationBuilder func(ctx context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarDestination, error)

// LookupBuilder creates a transit lookup.
type LookupBuilder func(ctx context.Context, s *domain.Settings) (driven.TransitLookup, error)

// Factory maps calendar types and transit providers to their builders.
type Factory struct {
	sources      map[domain.CalendarType]SourceBuilder
	destinations map[domain.CalendarType]DestinationBuilder
	lookups      map[string]LookupBuilder

	// One Calendar service is shared by both ends when both are Google.
	googleMu  sync.Mutex
	googleSvc *calendarapi.Service
}

// New creates a factory with the built-in CalDAV, Google and HERE builders.
func New() *Factory {
	f := &Factory{
		sources:      make(map[domain.CalendarType]SourceBuilder),
		destinations: make(map[domain.CalendarType]DestinationBuilder),
		lookups:      make(map[string]LookupBuilder),
	}
	f.RegisterCalendar(domain.CalendarCalDAV, caldavSource, caldavDestination)
	f.RegisterCalendar(domain.CalendarGoogle, f.googleSource, f.googleDestination)
	f.RegisterTransit(domain.DefaultTransitProvider, hereLookup)
	return f
}

// RegisterCalendar adds the builders for a calendar type.
func (f *Factory) RegisterCalendar(t domain.CalendarType, source SourceBuilder, dest DestinationBuilder) {
	f.sources[t] = source
	f.destinations[t] = dest
}

// RegisterTransit adds a transit provider builder.
func (f *Factory) RegisterTransit(provider string, builder LookupBuilder) {
	f.lookups[provider] = builder
}

// CreateSource returns the adapter for settings.Source.
func (f *Factory) CreateSource(ctx context.Context, s *domain.Settings) (driven.CalendarSource, error) {
	builder, ok := f.sources[s.Source.Type]
	if !ok {
		return nil, fmt.Errorf("%w: source calendar %q", domain.ErrUnsupportedType, s.Source.Type)
	}
	return builder(ctx, s.Source, s)
}

// CreateDestination returns the adapter for settings.Destination.
func (f *Factory) CreateDestination(ctx context.Context, s *domain.Settings) (driven.CalendarDestination, error) {
	builder, ok := f.destinations[s.Destination.Type]
	if !ok {
		return nil, fmt.Errorf("%w: destination calendar %q", domain.ErrUnsupportedType, s.Destination.Type)
	}
	return builder(ctx, s.Destination, s)
}

// CreateTransitLookup returns the lookup for settings.Transit.Provider.
func (f *Factory) CreateTransitLookup(ctx context.Context, s *domain.Settings) (driven.TransitLookup, error) {
	provider := s.Transit.Provider
	if provider == "" {
		provider = domain.DefaultTransitProvider
	}
	builder, ok := f.lookups[provider]
	if !ok {
		return nil, fmt.Errorf("%w: transit provider %q", domain.ErrUnsupportedType, provider)
	}
	return builder(ctx, s)
}

// SupportedTypes returns all registered calendar types, sorted.
func (f *Factory) SupportedTypes() []string {
	types := make([]string, 0, len(f.sources))
	for t := range f.sources {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

func caldavClient(cal domain.CalendarSettings) (*caldav.Client, error) {
	return caldav.NewClient(caldav.Config{
		URL:      cal.URL,
		Username: cal.Username,
		Password: cal.Password,
	})
}

func caldavSource(_ context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarSource, error) {
	client, err := caldavClient(cal)
	if err != nil {
		return nil, err
	}
	return caldav.NewSource(client, s.Location), nil
}

func caldavDestination(_ context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarDestination, error) {
	client, err := caldavClient(cal)
	if err != nil {
		return nil, err
	}
	return caldav.NewDestination(client, s.Location), nil
}

func (f *Factory) googleService(ctx context.Context, s *domain.Settings) (*calendarapi.Service, error) {
	f.googleMu.Lock()
	defer f.googleMu.Unlock()

	if f.googleSvc != nil {
		return f.googleSvc, nil
	}

	creds := google.Credentials{
		ClientID:     s.Google.ClientID,
		ClientSecret: s.Google.ClientSecret,
		RefreshToken: s.Google.RefreshToken,
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	svc, err := google.NewCalendarService(ctx, google.NewTokenSource(ctx, creds))
	if err != nil {
		return nil, fmt.Errorf("google calendar service: %w", err)
	}
	f.googleSvc = svc
	return svc, nil
}

func (f *Factory) googleConfig(ctx context.Context, cal domain.CalendarSettings, s *domain.Settings) (*calendarapi.Service, googlecal.Config, error) {
	cfg, err := googlecal.ConfigFromSettings(cal, s.Location, google.DefaultCalendarRateLimit.RequestsPerSecond)
	if err != nil {
		return nil, googlecal.Config{}, err
	}
	svc, err := f.googleService(ctx, s)
	if err != nil {
		return nil, googlecal.Config{}, err
	}
	return svc, cfg, nil
}

func (f *Factory) googleSource(ctx context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarSource, error) {
	svc, cfg, err := f.googleConfig(ctx, cal, s)
	if err != nil {
		return nil, err
	}
	return googlecal.NewSource(svc, cfg), nil
}

func (f *Factory) googleDestination(ctx context.Context, cal domain.CalendarSettings, s *domain.Settings) (driven.CalendarDestination, error) {
	svc, cfg, err := f.googleConfig(ctx, cal, s)
	if err != nil {
		return nil, err
	}
	return googlecal.NewDestination(svc, cfg), nil
}

func hereLookup(_ context.Context, s *domain.Settings) (driven.TransitLookup, error) {
	return here.NewClient(here.Config{
		APIKey:            s.Transit.APIKey,
		Mode:              s.Transit.Mode,
		RequestsPerSecond: s.Transit.RequestsPerSecond,
	})
}
