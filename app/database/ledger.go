package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lysyi3m/bow-comb/app/dates"
)

const itemsTable = "items"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dialect captures what differs between the table-backed ledgers.
type dialect struct {
	// firstSeenColumn is the select expression yielding first_seen as text.
	firstSeenColumn string
	// encodeFirstSeen converts a first-seen time into the value inserted.
	encodeFirstSeen func(time.Time) any
	// isMissingColumn reports whether err came from selecting an unknown column.
	isMissingColumn func(error) bool
	placeholder     sq.PlaceholderFormat
}

// sqlLedger implements Ledger on top of a single items table.
type sqlLedger struct {
	conn    *conn
	dialect dialect
	now     func() time.Time
}

type seenRow struct {
	ItemID    int64          `db:"itemid"`
	Title     sql.NullString `db:"title"`
	FirstSeen sql.NullString `db:"first_seen"`
}

func (l *sqlLedger) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(l.dialect.placeholder)
}

// Item returns the full ledger row for itemID, or nil when absent.
func (l *sqlLedger) Item(ctx context.Context, itemID int64) (*SeenItem, error) {
	db, err := l.conn.get(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := l.builder().
		Select("itemid", "title", l.dialect.firstSeenColumn+" AS first_seen").
		From(itemsTable).
		Where(sq.Eq{"itemid": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup query: %w", err)
	}

	var row seenRow
	err = db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up item %d: %w", itemID, err)
	}

	// A NULL or empty first_seen parses as "" and fails like any other
	// unreadable value; the row exists, so it must not be inserted again.
	firstSeen, err := dates.Parse(row.FirstSeen.String)
	if err != nil {
		return nil, fmt.Errorf("item %d has an unreadable first_seen: %w", itemID, err)
	}

	return &SeenItem{
		ItemID:    row.ItemID,
		Title:     row.Title.String,
		FirstSeen: firstSeen,
	}, nil
}

func (l *sqlLedger) Lookup(ctx context.Context, itemID int64) (time.Time, bool, error) {
	item, err := l.Item(ctx, itemID)
	if err != nil {
		return time.Time{}, false, err
	}
	if item == nil {
		return time.Time{}, false, nil
	}
	return item.FirstSeen, true, nil
}

func (l *sqlLedger) RecordFirstSeen(ctx context.Context, itemID int64, title string, observedAt time.Time) (time.Time, error) {
	seen, ok, err := l.Lookup(ctx, itemID)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return seen, nil
	}

	firstSeen := observedTime(observedAt, l.now)

	db, err := l.conn.get(ctx)
	if err != nil {
		return time.Time{}, err
	}

	query, args, err := l.builder().
		Insert(itemsTable).
		Columns("itemid", "title", "first_seen").
		Values(itemID, truncateTitle(title), l.dialect.encodeFirstSeen(firstSeen)).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return time.Time{}, fmt.Errorf("failed to record item %d: %w", itemID, err)
	}

	return firstSeen, nil
}

// Count returns the number of ledger rows.
func (l *sqlLedger) Count(ctx context.Context) (int, error) {
	db, err := l.conn.get(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+itemsTable); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// EnsureColumn adds column to table unless it already exists.
func (l *sqlLedger) EnsureColumn(ctx context.Context, table, column, definition string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if !identifierPattern.MatchString(column) {
		return fmt.Errorf("invalid column name %q", column)
	}
	if definition == "" {
		return fmt.Errorf("column %s.%s needs a definition", table, column)
	}

	db, err := l.conn.get(ctx)
	if err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s LIMIT 1", column, table))
	if err == nil {
		rows.Close()
		return nil
	}
	if !l.dialect.isMissingColumn(err) {
		return fmt.Errorf("failed to probe column %s.%s: %w", table, column, err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}

	return nil
}

func (l *sqlLedger) Close() error {
	return l.conn.close()
}
