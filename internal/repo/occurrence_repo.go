// Package repo implements the data persistence layer for recorded message
// occurrences, backed by GORM. This file provides the repository functions
// for the Occurrence model: append, windowed lookup, and retention pruning.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dupewatch/go-dupewatch/internal/domain"
)

// ErrUnavailable indicates a transient storage failure (connection loss,
// timeout, closed pool). Callers are expected to treat it as non-fatal and
// skip detection for the affected message rather than surface an error.
var ErrUnavailable = errors.New("storage unavailable")

// CreateOccurrence appends one occurrence row. Every call inserts a new row;
// there is no upsert and concurrent calls for the same fingerprint all
// persist. The occurrence's ID is filled in by GORM on success.
func CreateOccurrence(ctx context.Context, db *gorm.DB, occ *domain.Occurrence) error {
	if err := db.WithContext(ctx).Create(occ).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ListOccurrences returns all occurrences for (chatID, fingerprint) with
// OccurredAt at or after since, oldest first. Ordering is deterministic:
// OccurredAt ASC with the insertion-order ID breaking ties. A zero since
// returns the full history.
func ListOccurrences(ctx context.Context, db *gorm.DB, chatID int64, fingerprint string, since time.Time) ([]domain.Occurrence, error) {
	var out []domain.Occurrence
	q := db.WithContext(ctx).
		Where("chat_id = ? AND fingerprint = ?", chatID, fingerprint).
		Order("occurred_at ASC, id ASC")
	if !since.IsZero() {
		q = q.Where("occurred_at >= ?", since)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// PruneOccurrences deletes occurrences strictly older than cutoff and returns
// the number of rows removed. The cutoff predicate makes pruning commute with
// concurrent inserts of fresh rows.
func PruneOccurrences(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&domain.Occurrence{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

// Ping performs a trivial round trip to report storage reachability.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
