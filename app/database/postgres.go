package database

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var _ SchemaLedger = (*PostgresLedger)(nil)

// postgres stores first_seen as a naive TIMESTAMP holding UTC wall time.
const postgresTimestampLayout = "2006-01-02 15:04:05"

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection URL understood by lib/pq.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	q.Set("connect_timeout", "10")
	u.RawQuery = q.Encode()
	return u.String()
}

// PostgresLedger keeps the ledger in a networked table.
type PostgresLedger struct {
	sqlLedger
}

func NewPostgresLedger(ctx context.Context, config PostgresConfig) (*PostgresLedger, error) {
	dsn := config.DSN()

	l := &PostgresLedger{
		sqlLedger: sqlLedger{
			conn: &conn{
				backend: "postgres",
				open: func(ctx context.Context) (*sqlx.DB, error) {
					return sqlx.Open("postgres", dsn)
				},
			},
			dialect: dialect{
				firstSeenColumn: "to_char(first_seen, 'YYYY-MM-DD HH24:MI:SS')",
				encodeFirstSeen: func(t time.Time) any { return t.UTC().Format(postgresTimestampLayout) },
				isMissingColumn: func(err error) bool {
					var pqErr *pq.Error
					return errors.As(err, &pqErr) && pqErr.Code == "42703"
				},
				placeholder: sq.Dollar,
			},
			now: time.Now,
		},
	}

	if err := setupSchema(ctx, &l.sqlLedger, "postgres"); err != nil {
		l.Close()
		return nil, err
	}

	return l, nil
}
