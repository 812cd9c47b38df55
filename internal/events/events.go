package events

import "time"

// ScoreComputedEvent is sent when the pipeline finishes a score. It drives
// best-effort side effects such as e-mail notifications.
type ScoreComputedEvent struct {
	ID        string    // Result ID
	Keyword   string    // Normalized keyword
	URL       string    // Page the reviews were taken from
	Score     float64   // 0-10 score
	Fragments int       // Number of fragments scored
	Timestamp time.Time // When the score was computed
}

// NotificationFailedEvent describes a notification that could not be delivered.
type NotificationFailedEvent struct {
	ID        string
	Keyword   string
	Err       error
	Timestamp time.Time
}
