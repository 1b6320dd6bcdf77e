package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

type fingerprintStore struct {
	pool *pgxpool.Pool
}

var _ driven.FingerprintStore = (*fingerprintStore)(nil)

func (s *fingerprintStore) Get(ctx context.Context, id string) (*domain.FingerprintRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, location, date, hash, last_processed
		FROM fingerprints WHERE id = $1
	`, id)
	rec, err := scanFingerprint(row)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

func (s *fingerprintStore) Save(ctx context.Context, rec *domain.FingerprintRecord) error {
	if rec == nil || rec.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fingerprints (id, title, location, date, hash, last_processed)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			date = EXCLUDED.date,
			hash = EXCLUDED.hash,
			last_processed = EXCLUDED.last_processed
	`, rec.ID, rec.Title, rec.Location, rec.Date, rec.Hash, rec.LastProcessed)
	if err != nil {
		return fmt.Errorf("saving fingerprint: %w", err)
	}
	return nil
}

func (s *fingerprintStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM fingerprints WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting fingerprint: %w", err)
	}
	return nil
}

func (s *fingerprintStore) ListByDate(ctx context.Context, date string) ([]domain.FingerprintRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, location, date, hash, last_processed
		FROM fingerprints WHERE date = $1 ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	var records []domain.FingerprintRecord
	for rows.Next() {
		rec, err := scanFingerprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanFingerprint(row pgx.Row) (*domain.FingerprintRecord, error) {
	var r domain.FingerprintRecord
	if err := row.Scan(&r.ID, &r.Title, &r.Location, &r.Date, &r.Hash, &r.LastProcessed); err != nil {
		return nil, err
	}
	return &r, nil
}
