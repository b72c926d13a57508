// Package services holds the duplicate detection business logic.
//
// This file implements DedupService, the application-level component that
// decides whether an inbound chat message is a repeat of something already
// seen in the same chat. It normalizes and fingerprints the text, appends the
// sighting to the history store, reads back the windowed history (including
// its own write), and composes a duplicate report when the history holds more
// than one occurrence.
//
// The service is deliberately fail-open: any storage failure is logged and
// counted, detection is skipped for that message, and the caller receives
// nothing. Availability of the host chat always wins over guaranteed
// detection.
//
// Observability: Process is OpenTelemetry-instrumented and feeds the
// Prometheus counters defined in metrics.go.

package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dupewatch/go-dupewatch/internal/domain"
	"github.com/dupewatch/go-dupewatch/internal/textkey"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// defaultMinMessageLen excludes greetings/acknowledgements from detection.
	defaultMinMessageLen = 5
	// defaultRetentionWindow bounds both lookup and pruning.
	defaultRetentionWindow = 7 * 24 * time.Hour
)

// HistoryStore defines the storage contract required by DedupService.
// Implementations persist occurrences append-only and answer ordered
// windowed lookups.
type HistoryStore interface {
	// Record durably appends one occurrence; never an upsert.
	Record(ctx context.Context, db *gorm.DB, occ *domain.Occurrence) error

	// Lookup returns occurrences for (chatID, fingerprint) at or after since,
	// ordered oldest first with insertion order breaking timestamp ties.
	Lookup(ctx context.Context, db *gorm.DB, chatID int64, fingerprint string, since time.Time) ([]domain.Occurrence, error)

	// Prune deletes occurrences strictly older than cutoff.
	Prune(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

// InboundMessage is one qualifying text event delivered by the messenger.
type InboundMessage struct {
	ChatID     int64
	SenderID   int64
	SenderName string
	Text       string
	ReceivedAt time.Time
}

// DedupService orchestrates normalize → fingerprint → record → lookup →
// report for inbound chat messages.
type DedupService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the history store used by this service.
	Store HistoryStore

	// MinMessageLen is the minimum trimmed rune count a message must have to
	// participate in detection (default 5).
	MinMessageLen int
	// RetentionWindow is the trailing duration in which earlier occurrences
	// count as duplicates; it also drives pruning (default 7 days).
	RetentionWindow time.Duration
	// Location is the timezone used to render report timestamps.
	Location *time.Location
	// ElideThreshold caps how many occurrence lines a report shows in full.
	ElideThreshold int
}

// Process records msg and, if the same normalized text was already seen in
// the chat within the retention window, returns the duplicate report to send
// back. The boolean is false when there is nothing to say: first sighting,
// message below the minimum length, or a storage failure (which is logged,
// never surfaced).
func (s *DedupService) Process(ctx context.Context, msg InboundMessage) (string, bool) {
	tr := otel.Tracer("services/DedupService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.Int64("chat.id", msg.ChatID),
			attribute.Int64("sender.id", msg.SenderID),
		),
	)
	defer span.End()

	if utf8.RuneCountInString(strings.TrimSpace(msg.Text)) < s.minLen() {
		return "", false
	}
	messagesProcessed.Inc()

	now := msg.ReceivedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	fp := textkey.Fingerprint(textkey.Normalize(msg.Text))
	occ := &domain.Occurrence{
		ChatID:      msg.ChatID,
		Fingerprint: fp,
		RawText:     msg.Text,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		OccurredAt:  now,
	}

	// Write first, then read the history back including our own row. A chat's
	// history length > 1 is then the single duplicate criterion, and two
	// near-simultaneous identical messages cannot both be told they are first.
	if err := s.Store.Record(ctx, s.DB, occ); err != nil {
		detectionFailures.Inc()
		log.Warn().Err(err).Int64("chat_id", msg.ChatID).
			Msg("recording occurrence failed; detection skipped")
		return "", false
	}

	since := now.Add(-s.window())
	occs, err := s.Store.Lookup(ctx, s.DB, msg.ChatID, fp, since)
	if err != nil {
		detectionFailures.Inc()
		log.Warn().Err(err).Int64("chat_id", msg.ChatID).
			Msg("history lookup failed; detection skipped")
		return "", false
	}

	s.pruneExpired(ctx, now)

	if len(occs) < 2 {
		return "", false
	}

	duplicatesDetected.Inc()
	log.Info().Int64("chat_id", msg.ChatID).Int("occurrences", len(occs)).
		Msg("duplicate detected")
	return ComposeReport(occs, s.location(), s.elideThreshold()), true
}

// pruneExpired opportunistically removes occurrences that fell out of the
// retention window. Failures are logged, never surfaced.
func (s *DedupService) pruneExpired(ctx context.Context, now time.Time) {
	n, err := s.Store.Prune(ctx, s.DB, now.Add(-s.window()))
	if err != nil {
		log.Warn().Err(err).Msg("pruning expired occurrences failed")
		return
	}
	if n > 0 {
		occurrencesPruned.Add(float64(n))
		log.Debug().Int64("pruned", n).Msg("expired occurrences removed")
	}
}

func (s *DedupService) minLen() int {
	if s.MinMessageLen > 0 {
		return s.MinMessageLen
	}
	return defaultMinMessageLen
}

func (s *DedupService) window() time.Duration {
	if s.RetentionWindow > 0 {
		return s.RetentionWindow
	}
	return defaultRetentionWindow
}

func (s *DedupService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *DedupService) elideThreshold() int {
	if s.ElideThreshold > 0 {
		return s.ElideThreshold
	}
	return defaultElideThreshold
}
