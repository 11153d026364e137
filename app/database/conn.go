package database

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// conn keeps one live handle and reopens it when the liveness probe fails.
type conn struct {
	backend string
	open    func(ctx context.Context) (*sqlx.DB, error)
	db      *sqlx.DB
}

func (c *conn) get(ctx context.Context) (*sqlx.DB, error) {
	if c.db != nil {
		err := c.db.PingContext(ctx)
		if err == nil {
			return c.db, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		slog.Warn("Ledger connection is stale, reconnecting", "backend", c.backend, "error", err)
		c.db.Close()
		c.db = nil
	}

	db, err := c.open(ctx)
	if err != nil {
		return nil, &ConnectionError{Backend: c.backend, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Backend: c.backend, Err: err}
	}

	c.db = db
	return db, nil
}

func (c *conn) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
