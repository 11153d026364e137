package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lysyi3m/bow-comb/app/dates"
)

var _ SchemaLedger = (*SQLiteLedger)(nil)

// SQLiteLedger keeps the ledger in a local file.
type SQLiteLedger struct {
	sqlLedger
	path string
}

// NewSQLiteLedger opens the ledger file at path. Unless create is set the file
// has to exist already: starting from an empty ledger would re-announce every
// item the upstream still lists.
func NewSQLiteLedger(ctx context.Context, path string, create bool) (*SQLiteLedger, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &ConnectionError{Backend: "sqlite", Err: err}
		}
		if !create {
			return nil, &ConnectionError{Backend: "sqlite", Err: fmt.Errorf("ledger file %s does not exist", path)}
		}
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &ConnectionError{Backend: "sqlite", Err: err}
			}
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, &ConnectionError{Backend: "sqlite", Err: err}
		}
		f.Close()
	}

	l := &SQLiteLedger{
		sqlLedger: sqlLedger{
			conn: &conn{
				backend: "sqlite",
				// The driver creates missing files on connect, so a ledger
				// removed mid-run would come back empty.
				open: func(ctx context.Context) (*sqlx.DB, error) {
					if _, err := os.Stat(path); err != nil {
						return nil, fmt.Errorf("ledger file %s is not available: %w", path, err)
					}
					return sqlx.Open("sqlite", path)
				},
			},
			dialect: dialect{
				firstSeenColumn: "first_seen",
				encodeFirstSeen: func(t time.Time) any { return dates.Format(t) },
				isMissingColumn: func(err error) bool {
					return strings.Contains(err.Error(), "no such column")
				},
				placeholder: sq.Question,
			},
			now: time.Now,
		},
		path: path,
	}

	if err := setupSchema(ctx, &l.sqlLedger, "sqlite"); err != nil {
		l.Close()
		return nil, err
	}

	return l, nil
}

func (l *SQLiteLedger) Path() string {
	return l.path
}

// setupSchema migrates a freshly opened ledger and back-fills columns that
// ledgers created by older releases may lack.
func setupSchema(ctx context.Context, l *sqlLedger, dialectName string) error {
	db, err := l.conn.get(ctx)
	if err != nil {
		return err
	}

	if _, err := runMigrations(db, dialectName); err != nil {
		return fmt.Errorf("failed to migrate %s ledger: %w", dialectName, err)
	}

	titleDefinition := "TEXT"
	if dialectName == "postgres" {
		titleDefinition = "VARCHAR(255)"
	}
	if err := l.EnsureColumn(ctx, itemsTable, "title", titleDefinition); err != nil {
		return err
	}

	return nil
}
