package driven

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// EventStore persists located events fetched from the source calendar.
type EventStore interface {
	// Save creates or replaces an event by ID.
	Save(ctx context.Context, event *domain.LocatedEvent) error

	// Get retrieves an event by ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.LocatedEvent, error)

	// ListByDate returns the events of a date ordered ascending by start time.
	ListByDate(ctx context.Context, date string) ([]domain.LocatedEvent, error)

	// ListBetween returns the events whose date lies in [from, to], inclusive.
	ListBetween(ctx context.Context, from, to string) ([]domain.LocatedEvent, error)

	// Delete removes an event by ID. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByDate removes all events of a date and returns the count.
	DeleteByDate(ctx context.Context, date string) (int, error)

	// DeleteBefore removes all events dated before date and returns the count.
	DeleteBefore(ctx context.Context, date string) (int, error)
}
