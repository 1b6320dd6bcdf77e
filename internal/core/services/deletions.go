package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// DeletionDetector finds stored events that no longer exist upstream.
type DeletionDetector struct {
	events       driven.EventStore
	fingerprints driven.FingerprintStore
}

// NewDeletionDetector creates a deletion detector.
func NewDeletionDetector(events driven.EventStore, fingerprints driven.FingerprintStore) *DeletionDetector {
	return &DeletionDetector{events: events, fingerprints: fingerprints}
}

// FindDeleted scans every stored event dated in [from, to] and removes the
// ones whose ID is missing from currentIDs, together with their fingerprint.
// It returns the sorted dates that lost at least one event.
//
// currentIDs must be the complete result of a fetch covering the same
// window: absence from it is the deletion signal.
func (d *DeletionDetector) FindDeleted(ctx context.Context, currentIDs map[string]struct{}, from, to string) ([]string, error) {
	stored, err := d.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list stored events: %w", err)
	}

	dates := make(map[string]struct{})
	for i := range stored {
		ev := &stored[i]
		if _, ok := currentIDs[ev.ID]; ok {
			continue
		}
		logger.Info("detected deleted event %q on %s", ev.Title, ev.Date)
		dates[ev.Date] = struct{}{}

		if err := d.events.Delete(ctx, ev.ID); err != nil {
			logger.Warn("deleting stored event %s: %v", ev.ID, err)
		}
		if err := d.fingerprints.Delete(ctx, ev.ID); err != nil {
			logger.Warn("deleting fingerprint %s: %v", ev.ID, err)
		}
	}

	result := make([]string, 0, len(dates))
	for date := range dates {
		result = append(result, date)
	}
	sort.Strings(result)
	return result, nil
}
