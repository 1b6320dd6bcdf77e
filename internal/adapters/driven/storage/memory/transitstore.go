package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// Ensure TransitStore implements the interface.
var _ driven.TransitStore = (*TransitStore)(nil)

// TransitStore is an in-memory implementation of driven.TransitStore.
type TransitStore struct {
	mu       sync.RWMutex
	segments map[string]domain.TransitSegment
}

// NewTransitStore creates a new in-memory transit store.
func NewTransitStore() *TransitStore {
	return &TransitStore{
		segments: make(map[string]domain.TransitSegment),
	}
}

// Save creates or replaces a segment.
func (s *TransitStore) Save(_ context.Context, seg *domain.TransitSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[seg.ID] = *seg
	return nil
}

// ListByDate returns the segments of a date ordered by start time.
func (s *TransitStore) ListByDate(_ context.Context, date string) ([]domain.TransitSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.TransitSegment
	for _, seg := range s.segments {
		if seg.Date == date {
			result = append(result, seg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start.Equal(result[j].Start) {
			return result[i].ID < result[j].ID
		}
		return result[i].Start.Before(result[j].Start)
	})
	return result, nil
}

// DeleteByDate removes all segments of a date.
func (s *TransitStore) DeleteByDate(_ context.Context, date string) (int, error) {
	return s.deleteWhere(func(seg domain.TransitSegment) bool { return seg.Date == date }), nil
}

// DeleteBefore removes all segments dated before date.
func (s *TransitStore) DeleteBefore(_ context.Context, date string) (int, error) {
	return s.deleteWhere(func(seg domain.TransitSegment) bool { return seg.Date < date }), nil
}

func (s *TransitStore) deleteWhere(match func(domain.TransitSegment) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, seg := range s.segments {
		if match(seg) {
			delete(s.segments, id)
			n++
		}
	}
	return n
}
