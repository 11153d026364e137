package database

import (
	"fmt"
	"time"
)

// SeenItem is one ledger row.
type SeenItem struct {
	ItemID    int64
	Title     string
	FirstSeen time.Time
}

// ConnectionError means the ledger backend could not be reached. There is no
// local fallback, so callers abort the run.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s ledger unavailable: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

const maxTitleLength = 255

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return string(runes[:maxTitleLength])
}

func observedTime(observedAt time.Time, now func() time.Time) time.Time {
	if observedAt.IsZero() {
		observedAt = now()
	}
	return observedAt.UTC().Truncate(time.Second)
}
