package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

const eventColumns = `id, title, location, start_time, end_time, date, calendar_id, updated_at`

// Save creates or replaces an event.
func (s *eventStore) Save(ctx context.Context, event *domain.LocatedEvent) error {
	if event == nil || event.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			location = excluded.location,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			date = excluded.date,
			calendar_id = excluded.calendar_id,
			updated_at = excluded.updated_at
	`, event.ID, event.Title, event.Location,
		formatTime(event.Start), formatTime(event.End), event.Date,
		nullString(event.CalendarID), formatTime(event.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID.
func (s *eventStore) Get(ctx context.Context, id string) (*domain.LocatedEvent, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	return event, nil
}

// ListByDate returns the events of a date ordered by start time.
func (s *eventStore) ListByDate(ctx context.Context, date string) ([]domain.LocatedEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE date = ? ORDER BY start_time, id`, date)
}

// ListBetween returns the events dated within [from, to].
func (s *eventStore) ListBetween(ctx context.Context, from, to string) ([]domain.LocatedEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE date >= ? AND date <= ? ORDER BY start_time, id`, from, to)
}

// Delete removes an event.
func (s *eventStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// DeleteByDate removes the events of a date.
func (s *eventStore) DeleteByDate(ctx context.Context, date string) (int, error) {
	n, err := s.store.deleteCount(ctx, "DELETE FROM events WHERE date = ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting events for %s: %w", date, err)
	}
	return n, nil
}

// DeleteBefore removes the events dated before date.
func (s *eventStore) DeleteBefore(ctx context.Context, date string) (int, error) {
	n, err := s.store.deleteCount(ctx, "DELETE FROM events WHERE date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting events before %s: %w", date, err)
	}
	return n, nil
}

func (s *eventStore) query(ctx context.Context, query string, args ...any) ([]domain.LocatedEvent, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.LocatedEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.LocatedEvent, error) {
	var event domain.LocatedEvent
	var start, end, updated string
	var calendarID sql.NullString

	if err := row.Scan(&event.ID, &event.Title, &event.Location,
		&start, &end, &event.Date, &calendarID, &updated); err != nil {
		return nil, err
	}

	event.Start = parseTime(start)
	event.End = parseTime(end)
	event.UpdatedAt = parseTime(updated)
	if calendarID.Valid {
		event.CalendarID = calendarID.String
	}
	return &event, nil
}
