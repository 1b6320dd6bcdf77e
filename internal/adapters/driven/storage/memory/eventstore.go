package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]domain.LocatedEvent
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]domain.LocatedEvent),
	}
}

// Save creates or replaces an event.
func (s *EventStore) Save(_ context.Context, event *domain.LocatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = *event
	return nil
}

// Get retrieves an event by ID.
func (s *EventStore) Get(_ context.Context, id string) (*domain.LocatedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ev, nil
}

// ListByDate returns the events of a date ordered by start time.
func (s *EventStore) ListByDate(_ context.Context, date string) ([]domain.LocatedEvent, error) {
	return s.filter(func(ev *domain.LocatedEvent) bool { return ev.Date == date }), nil
}

// ListBetween returns the events dated in [from, to].
func (s *EventStore) ListBetween(_ context.Context, from, to string) ([]domain.LocatedEvent, error) {
	return s.filter(func(ev *domain.LocatedEvent) bool { return ev.Date >= from && ev.Date <= to }), nil
}

// Delete removes an event by ID.
func (s *EventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

// DeleteByDate removes all events of a date.
func (s *EventStore) DeleteByDate(_ context.Context, date string) (int, error) {
	return s.deleteWhere(func(ev *domain.LocatedEvent) bool { return ev.Date == date }), nil
}

// DeleteBefore removes all events dated before date.
func (s *EventStore) DeleteBefore(_ context.Context, date string) (int, error) {
	return s.deleteWhere(func(ev *domain.LocatedEvent) bool { return ev.Date < date }), nil
}

func (s *EventStore) filter(keep func(*domain.LocatedEvent) bool) []domain.LocatedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.LocatedEvent
	for id := range s.events {
		ev := s.events[id]
		if keep(&ev) {
			result = append(result, ev)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start.Equal(result[j].Start) {
			return result[i].ID < result[j].ID
		}
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

func (s *EventStore) deleteWhere(match func(*domain.LocatedEvent) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id := range s.events {
		ev := s.events[id]
		if match(&ev) {
			delete(s.events, id)
			n++
		}
	}
	return n
}
