package library

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"library-catalog/config"
)

// Conn is the slice of a store session the repositories need: parameterized
// execution and parameterized queries with row iteration.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Database hands out store connections. Every Acquire opens a new physical
// connection and nothing is kept idle, so connections are never reused
// across operations.
type Database struct {
	db  *sqlx.DB
	sql statements
	log *slog.Logger
}

// NewDatabase prepares a handle for cfg without connecting yet. Connection
// problems surface on the first Acquire.
func NewDatabase(cfg config.Database, log *slog.Logger) (*Database, error) {
	dialect, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if log == nil {
		log = slog.Default()
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, connectionError("open", err)
	}
	db.SetMaxIdleConns(0)
	db.SetMaxOpenConns(1)

	return &Database{
		db:  db,
		sql: newStatements(dialect),
		log: log.With("driver", cfg.Driver),
	}, nil
}

// Close releases the process-scoped handle.
func (d *Database) Close() error {
	return d.db.Close()
}

// Acquire opens a fresh connection. The caller owns it and must Close it.
func (d *Database) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	return d.acquire(ctx, "acquire")
}

func (d *Database) acquire(ctx context.Context, op string) (*sqlx.Conn, error) {
	conn, err := d.db.Connx(ctx)
	if err != nil {
		return nil, connectionError(op, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, connectionError(op, err)
	}
	return conn, nil
}

// withConn runs fn on a freshly acquired connection and releases it however
// fn returns.
func (d *Database) withConn(ctx context.Context, op string, fn func(Conn) error) error {
	conn, err := d.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			d.log.Warn("release connection", "op", op, "err", cerr)
		}
	}()
	d.log.Debug("connection acquired", "op", op)
	return fn(conn)
}
