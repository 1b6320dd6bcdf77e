package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

type transitStore struct {
	pool *pgxpool.Pool
}

var _ driven.TransitStore = (*transitStore)(nil)

func (s *transitStore) Save(ctx context.Context, seg *domain.TransitSegment) error {
	if seg == nil || seg.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transit_segments (id, title, origin, destination, start_time, end_time, date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			date = EXCLUDED.date,
			created_at = EXCLUDED.created_at
	`, seg.ID, seg.Title, seg.Origin, seg.Destination, seg.Start, seg.End, seg.Date, seg.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving transit segment: %w", err)
	}
	return nil
}

func (s *transitStore) ListByDate(ctx context.Context, date string) ([]domain.TransitSegment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, origin, destination, start_time, end_time, date, created_at
		FROM transit_segments WHERE date = $1 ORDER BY start_time, id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("querying transit segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.TransitSegment
	for rows.Next() {
		var seg domain.TransitSegment
		if err := rows.Scan(&seg.ID, &seg.Title, &seg.Origin, &seg.Destination,
			&seg.Start, &seg.End, &seg.Date, &seg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transit segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *transitStore) DeleteByDate(ctx context.Context, date string) (int, error) {
	return deleteCount(ctx, s.pool, `DELETE FROM transit_segments WHERE date = $1`, date)
}

func (s *transitStore) DeleteBefore(ctx context.Context, date string) (int, error) {
	return deleteCount(ctx, s.pool, `DELETE FROM transit_segments WHERE date < $1`, date)
}
