package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

// fingerprintStore implements driven.FingerprintStore.
type fingerprintStore struct {
	store *Store
}

var _ driven.FingerprintStore = (*fingerprintStore)(nil)

// Get retrieves a fingerprint record by event ID.
func (s *fingerprintStore) Get(ctx context.Context, id string) (*domain.FingerprintRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, location, date, hash, last_processed
		FROM fingerprints WHERE id = ?
	`, id)

	record, err := scanFingerprint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning fingerprint: %w", err)
	}
	return record, nil
}

// Save creates or replaces a fingerprint record.
func (s *fingerprintStore) Save(ctx context.Context, record *domain.FingerprintRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO fingerprints (id, title, location, date, hash, last_processed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			location = excluded.location,
			date = excluded.date,
			hash = excluded.hash,
			last_processed = excluded.last_processed
	`, record.ID, record.Title, record.Location, record.Date, record.Hash,
		formatTime(record.LastProcessed))
	if err != nil {
		return fmt.Errorf("saving fingerprint: %w", err)
	}
	return nil
}

// Delete removes a fingerprint record.
func (s *fingerprintStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM fingerprints WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting fingerprint: %w", err)
	}
	return nil
}

// ListByDate returns the records whose event belonged to date.
func (s *fingerprintStore) ListByDate(ctx context.Context, date string) ([]domain.FingerprintRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, location, date, hash, last_processed
		FROM fingerprints WHERE date = ? ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	var records []domain.FingerprintRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanFingerprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprints: %w", err)
	}
	return records, nil
}

func scanFingerprint(row rowScanner) (*domain.FingerprintRecord, error) {
	var record domain.FingerprintRecord
	var processed string
	if err := row.Scan(&record.ID, &record.Title, &record.Location,
		&record.Date, &record.Hash, &processed); err != nil {
		return nil, err
	}
	record.LastProcessed = parseTime(processed)
	return &record, nil
}
