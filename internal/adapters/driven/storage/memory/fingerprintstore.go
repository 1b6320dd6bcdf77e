package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// Ensure FingerprintStore implements the interface.
var _ driven.FingerprintStore = (*FingerprintStore)(nil)

// FingerprintStore is an in-memory implementation of driven.FingerprintStore.
type FingerprintStore struct {
	mu      sync.RWMutex
	records map[string]domain.FingerprintRecord
}

// NewFingerprintStore creates a new in-memory fingerprint store.
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{
		records: make(map[string]domain.FingerprintRecord),
	}
}

// Get retrieves a record by event ID.
func (s *FingerprintStore) Get(_ context.Context, id string) (*domain.FingerprintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Save creates or replaces a record.
func (s *FingerprintStore) Save(_ context.Context, record *domain.FingerprintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = *record
	return nil
}

// Delete removes a record.
func (s *FingerprintStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// ListByDate returns the records of a date ordered by ID.
func (s *FingerprintStore) ListByDate(_ context.Context, date string) ([]domain.FingerprintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.FingerprintRecord
	for _, rec := range s.records {
		if rec.Date == date {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Len returns the number of stored records.
func (s *FingerprintStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
