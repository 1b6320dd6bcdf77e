package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Fingerprint digests the fields that decide an event's transit legs.
// The end time is not included: an event that only changes duration keeps
// its fingerprint. The start is rendered in UTC so the digest does not
// depend on the zone the upstream reported.
func Fingerprint(event *domain.LocatedEvent) string {
	sum := sha256.Sum256([]byte(event.Title + "|" + event.Location + "|" + event.Start.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])
}

// ChangeDetector decides whether a fetched event needs its date rebuilt.
type ChangeDetector struct {
	store driven.FingerprintStore
	now   func() time.Time
}

// NewChangeDetector creates a change detector over a fingerprint store.
func NewChangeDetector(store driven.FingerprintStore) *ChangeDetector {
	return &ChangeDetector{store: store, now: time.Now}
}

// RecordAndCheck compares the event against its stored fingerprint and
// records the new one. It returns true for new and changed events and
// false when nothing relevant changed. Store failures also return true so
// the date is reprocessed rather than silently skipped.
func (d *ChangeDetector) RecordAndCheck(ctx context.Context, event *domain.LocatedEvent) bool {
	hash := Fingerprint(event)

	record, err := d.store.Get(ctx, event.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		record = &domain.FingerprintRecord{ID: event.ID}
	case err != nil:
		logger.Warn("fingerprint lookup for %s failed, treating as changed: %v", event.ID, err)
		return true
	case record.Hash == hash:
		return false
	}

	record.Title = event.Title
	record.Location = event.Location
	record.Date = event.Date
	record.Hash = hash
	record.LastProcessed = d.now()
	if err := d.store.Save(ctx, record); err != nil {
		logger.Warn("saving fingerprint for %s failed: %v", event.ID, err)
	}
	return true
}
