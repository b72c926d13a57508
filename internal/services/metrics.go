// Package services holds the duplicate detection business logic.
//
// This file defines the Prometheus instrumentation for the detection engine.
// Counters here complement the HTTP-level metrics in internal/http/middleware:
// they measure what the engine actually did (messages considered, duplicates
// found, rows pruned, failures swallowed by the fail-open policy), which is
// the signal an operator needs when the bot goes quiet.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// messagesProcessed counts messages that passed the minimum-length gate
	// and entered detection.
	messagesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dedup_messages_processed_total",
		Help: "Total number of messages that entered duplicate detection.",
	})

	// duplicatesDetected counts messages for which a duplicate report was composed.
	duplicatesDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dedup_duplicates_detected_total",
		Help: "Total number of duplicate reports composed.",
	})

	// detectionFailures counts messages skipped because the history store was
	// unavailable. Detection is fail-open, so these are invisible in chat.
	detectionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dedup_detection_failures_total",
		Help: "Total number of messages skipped due to storage failures.",
	})

	// occurrencesPruned counts history rows removed by retention pruning.
	occurrencesPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dedup_occurrences_pruned_total",
		Help: "Total number of occurrences removed by retention pruning.",
	})
)

func init() {
	prometheus.MustRegister(messagesProcessed, duplicatesDetected, detectionFailures, occurrencesPruned)
}
