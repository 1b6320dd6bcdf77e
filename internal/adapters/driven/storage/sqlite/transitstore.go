package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// transitStore implements driven.TransitStore.
type transitStore struct {
	store *Store
}

var _ driven.TransitStore = (*transitStore)(nil)

// Save creates or replaces a segment.
func (s *transitStore) Save(ctx context.Context, seg *domain.TransitSegment) error {
	if seg == nil || seg.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO transit_segments (id, title, origin, destination, start_time, end_time, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			origin = excluded.origin,
			destination = excluded.destination,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			date = excluded.date,
			created_at = excluded.created_at
	`, seg.ID, seg.Title, seg.Origin, seg.Destination,
		formatTime(seg.Start), formatTime(seg.End), seg.Date, formatTime(seg.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving transit segment: %w", err)
	}
	return nil
}

// ListByDate returns the segments of a date ordered by start time.
func (s *transitStore) ListByDate(ctx context.Context, date string) ([]domain.TransitSegment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, origin, destination, start_time, end_time, date, created_at
		FROM transit_segments WHERE date = ? ORDER BY start_time, id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("querying transit segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.TransitSegment //nolint:prealloc // size unknown from query
	for rows.Next() {
		var seg domain.TransitSegment
		var start, end, created string
		if err := rows.Scan(&seg.ID, &seg.Title, &seg.Origin, &seg.Destination,
			&start, &end, &seg.Date, &created); err != nil {
			return nil, fmt.Errorf("scanning transit segment: %w", err)
		}
		seg.Start = parseTime(start)
		seg.End = parseTime(end)
		seg.CreatedAt = parseTime(created)
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transit segments: %w", err)
	}
	return segments, nil
}

// DeleteByDate removes the segments of a date.
func (s *transitStore) DeleteByDate(ctx context.Context, date string) (int, error) {
	n, err := s.store.deleteCount(ctx, "DELETE FROM transit_segments WHERE date = ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting transit segments for %s: %w", date, err)
	}
	return n, nil
}

// DeleteBefore removes the segments dated before date.
func (s *transitStore) DeleteBefore(ctx context.Context, date string) (int, error) {
	n, err := s.store.deleteCount(ctx, "DELETE FROM transit_segments WHERE date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting transit segments before %s: %w", date, err)
	}
	return n, nil
}
