package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

type eventStore struct {
	pool *pgxpool.Pool
}

var _ driven.EventStore = (*eventStore)(nil)

const eventColumns = `id, title, location, start_time, end_time, date, calendar_id, updated_at`

func (s *eventStore) Save(ctx context.Context, event *domain.LocatedEvent) error {
	if event == nil || event.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			date = EXCLUDED.date,
			calendar_id = EXCLUDED.calendar_id,
			updated_at = EXCLUDED.updated_at
	`, event.ID, event.Title, event.Location, event.Start, event.End, event.Date,
		event.CalendarID, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

func (s *eventStore) Get(ctx context.Context, id string) (*domain.LocatedEvent, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		return nil, notFound(err)
	}
	return event, nil
}

func (s *eventStore) ListByDate(ctx context.Context, date string) ([]domain.LocatedEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE date = $1 ORDER BY start_time, id`, date)
}

func (s *eventStore) ListBetween(ctx context.Context, from, to string) ([]domain.LocatedEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE date >= $1 AND date <= $2 ORDER BY start_time, id`, from, to)
}

func (s *eventStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func (s *eventStore) DeleteByDate(ctx context.Context, date string) (int, error) {
	return deleteCount(ctx, s.pool, `DELETE FROM events WHERE date = $1`, date)
}

func (s *eventStore) DeleteBefore(ctx context.Context, date string) (int, error) {
	return deleteCount(ctx, s.pool, `DELETE FROM events WHERE date < $1`, date)
}

func (s *eventStore) query(ctx context.Context, query string, args ...any) ([]domain.LocatedEvent, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.LocatedEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.LocatedEvent, error) {
	var e domain.LocatedEvent
	if err := row.Scan(&e.ID, &e.Title, &e.Location, &e.Start, &e.End,
		&e.Date, &e.CalendarID, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
