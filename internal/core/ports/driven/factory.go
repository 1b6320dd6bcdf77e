package driven

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// ConnectorFactory builds the calendar and transit adapters named in settings.
// It maintains a registry of calendar types and transit providers.
type ConnectorFactory interface {
	// CreateSource returns the adapter for settings.Source.
	// Returns domain.ErrUnsupportedType if the calendar type is unknown.
	CreateSource(ctx context.Context, settings *domain.Settings) (CalendarSource, error)

	// CreateDestination returns the adapter for settings.Destination.
	// Returns domain.ErrUnsupportedType if the calendar type is unknown.
	CreateDestination(ctx context.Context, settings *domain.Settings) (CalendarDestination, error)

	// CreateTransitLookup returns the lookup for settings.Transit.Provider.
	// Returns domain.ErrUnsupportedType if the provider is unknown.
	CreateTransitLookup(ctx context.Context, settings *domain.Settings) (TransitLookup, error)

	// SupportedTypes returns all registered calendar types.
	SupportedTypes() []string
}
