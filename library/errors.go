package library

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound reports that a row addressed by id does not exist. It is a
	// domain answer, not a store failure.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is joined into a query error when the store rejects an
	// insert because the id is already taken.
	ErrDuplicateID = errors.New("id already exists")
)

// Kind classifies store failures.
type Kind int

const (
	KindConnection Kind = iota + 1 // store unreachable or refused the session
	KindQuery                      // statement rejected or failed mid-flight
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// StoreError is returned for every failure that originates in the relational
// store.
type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err (or anything it wraps) is a
// StoreError of kind KindConnection.
func IsConnectionError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindConnection
}

// IsQueryError reports whether err is a StoreError of kind KindQuery.
func IsQueryError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindQuery
}

func connectionError(op string, err error) error {
	return &StoreError{Kind: KindConnection, Op: op, Err: err}
}

func queryError(op string, err error) error {
	if isDuplicateError(err) {
		err = fmt.Errorf("%w: %w", ErrDuplicateID, err)
	}
	return &StoreError{Kind: KindQuery, Op: op, Err: err}
}

// isDuplicateError recognises primary-key and unique violations for every
// supported driver.
func isDuplicateError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
