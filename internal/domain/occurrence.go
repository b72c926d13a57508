// Package domain defines the persistence model for recorded message
// occurrences. The type is mapped with GORM and shared across the repository
// and service layers.
package domain

import "time"

// Occurrence is one durable sighting of a message fingerprint inside a chat.
// Rows are append-only: an occurrence is written exactly once when a
// qualifying message arrives and is removed only by retention pruning.
//
// Fields:
//   - ID: auto-increment surrogate key; carries insertion order and breaks
//     ties between occurrences sharing the same OccurredAt.
//   - ChatID: Telegram chat the message was seen in; detection is always
//     scoped to a single chat.
//   - Fingerprint: SHA-256 hex of the normalized message text (64 chars).
//   - RawText: original message text as submitted, retained for reporting.
//   - SenderID / SenderName: attribution of who produced this occurrence.
//   - OccurredAt: when the message was received; indexed both for the
//     per-chat range scan and for retention pruning.
type Occurrence struct {
	ID          uint      `json:"id"          gorm:"primaryKey;autoIncrement"`
	ChatID      int64     `json:"chat_id"     gorm:"not null;index:idx_chat_fp_time,priority:1"`
	Fingerprint string    `json:"fingerprint" gorm:"type:char(64);not null;index:idx_chat_fp_time,priority:2"`
	RawText     string    `json:"raw_text"    gorm:"type:text;not null"`
	SenderID    int64     `json:"sender_id"   gorm:"not null"`
	SenderName  string    `json:"sender_name" gorm:"type:varchar(128);not null"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"not null;index:idx_chat_fp_time,priority:3;index:idx_occurred_at"`
}

// TableName returns the database table name for Occurrence.
func (Occurrence) TableName() string { return "occurrences" }
