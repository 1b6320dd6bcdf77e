package driven

import (
	"context"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// FingerprintStore persists the last fingerprint seen for each event.
type FingerprintStore interface {
	// Get retrieves a record by event ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.FingerprintRecord, error)

	// Save creates or replaces a record by event ID.
	Save(ctx context.Context, record *domain.FingerprintRecord) error

	// Delete removes a record. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// ListByDate returns the records whose event belonged to date.
	ListByDate(ctx context.Context, date string) ([]domain.FingerprintRecord, error)
}
