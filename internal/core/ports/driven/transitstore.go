package driven

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// TransitStore persists synthesised transit segments.
type TransitStore interface {
	// Save creates or replaces a segment by ID.
	Save(ctx context.Context, seg *domain.TransitSegment) error

	// ListByDate returns the segments of a date ordered by start time.
	ListByDate(ctx context.Context, date string) ([]domain.TransitSegment, error)

	// DeleteByDate removes all segments of a date and returns the count.
	DeleteByDate(ctx context.Context, date string) (int, error)

	// DeleteBefore removes all segments dated before date and returns the count.
	DeleteBefore(ctx context.Context, date string) (int, error)
}
