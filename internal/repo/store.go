// Package repo provides persistence for recorded message occurrences.
//
// OccurrenceStore adapts the repository free functions to the
// services.HistoryStore interface expected by the DedupService. This keeps
// the service decoupled from the concrete repo package while reusing the
// existing functions.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dupewatch/go-dupewatch/internal/domain"
)

// OccurrenceStore is the production history store backed by this package.
type OccurrenceStore struct{}

// Record proxies CreateOccurrence.
func (OccurrenceStore) Record(ctx context.Context, db *gorm.DB, occ *domain.Occurrence) error {
	return CreateOccurrence(ctx, db, occ)
}

// Lookup proxies ListOccurrences.
func (OccurrenceStore) Lookup(ctx context.Context, db *gorm.DB, chatID int64, fingerprint string, since time.Time) ([]domain.Occurrence, error) {
	return ListOccurrences(ctx, db, chatID, fingerprint, since)
}

// Prune proxies PruneOccurrences.
func (OccurrenceStore) Prune(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	return PruneOccurrences(ctx, db, cutoff)
}
