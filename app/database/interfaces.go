package database

import (
	"context"
	"time"
)

// Ledger records the first time each upstream item was observed. Rows are
// append-only: once an item has a first-seen time it never changes.
type Ledger interface {
	// Lookup returns the recorded first-seen time, or false if the item was
	// never recorded.
	Lookup(ctx context.Context, itemID int64) (time.Time, bool, error)

	// RecordFirstSeen returns the existing first-seen time for itemID, or
	// inserts observedAt (now when zero) and returns it.
	RecordFirstSeen(ctx context.Context, itemID int64, title string, observedAt time.Time) (time.Time, error)

	Close() error
}

// SchemaLedger is implemented by the table-backed ledgers.
type SchemaLedger interface {
	Ledger
	EnsureColumn(ctx context.Context, table, column, definition string) error
}
