package library

import (
	"context"
	"database/sql"
	"errors"
)

// Catalog maps books and members to their rows. Each method runs exactly one
// statement on its own connection.
type Catalog struct {
	db *Database
}

func NewCatalog(db *Database) *Catalog {
	return &Catalog{db: db}
}

// AddBook inserts b as given. There is no existence pre-check: a taken id is
// reported by the store and comes back wrapping ErrDuplicateID.
func (c *Catalog) AddBook(ctx context.Context, b Book) error {
	const op = "add book"
	stmt, err := c.db.sql.insertBook(b)
	if err != nil {
		return queryError(op, err)
	}
	return c.db.withConn(ctx, op, func(conn Conn) error {
		return execInsert(ctx, conn, op, stmt)
	})
}

// RemoveBook deletes the book row. Ledger rows that reference it are kept.
// It returns ErrNotFound when no row matched.
func (c *Catalog) RemoveBook(ctx context.Context, id int64) error {
	const op = "remove book"
	stmt, err := c.db.sql.deleteBook(id)
	if err != nil {
		return queryError(op, err)
	}
	return c.db.withConn(ctx, op, func(conn Conn) error {
		return execOne(ctx, conn, op, stmt)
	})
}

// FindBookByID returns the book or ErrNotFound.
func (c *Catalog) FindBookByID(ctx context.Context, id int64) (Book, error) {
	const op = "find book"
	var b Book
	stmt, err := c.db.sql.selectBook(id)
	if err != nil {
		return b, queryError(op, err)
	}
	err = c.db.withConn(ctx, op, func(conn Conn) error {
		return getOne(ctx, conn, op, &b, stmt)
	})
	return b, err
}

// ListBooks returns every book ordered by id.
func (c *Catalog) ListBooks(ctx context.Context) ([]Book, error) {
	const op = "list books"
	stmt, err := c.db.sql.selectBooks()
	if err != nil {
		return nil, queryError(op, err)
	}
	var books []Book
	err = c.db.withConn(ctx, op, func(conn Conn) error {
		var qerr error
		books, qerr = queryAll[Book](ctx, conn, op, stmt)
		return qerr
	})
	return books, err
}

// AddMember inserts the member row. The borrow cache is not persisted.
func (c *Catalog) AddMember(ctx context.Context, m *Member) error {
	const op = "add member"
	stmt, err := c.db.sql.insertMember(m)
	if err != nil {
		return queryError(op, err)
	}
	return c.db.withConn(ctx, op, func(conn Conn) error {
		return execInsert(ctx, conn, op, stmt)
	})
}

// RemoveMember deletes the member row, leaving ledger rows in place.
func (c *Catalog) RemoveMember(ctx context.Context, id int64) error {
	const op = "remove member"
	stmt, err := c.db.sql.deleteMember(id)
	if err != nil {
		return queryError(op, err)
	}
	return c.db.withConn(ctx, op, func(conn Conn) error {
		return execOne(ctx, conn, op, stmt)
	})
}

// FindMemberByID loads a member. The result is always a new instance whose
// BorrowedBooks is empty, whatever the ledger holds.
func (c *Catalog) FindMemberByID(ctx context.Context, id int64) (*Member, error) {
	const op = "find member"
	stmt, err := c.db.sql.selectMember(id)
	if err != nil {
		return nil, queryError(op, err)
	}
	m := NewMember(0, "")
	err = c.db.withConn(ctx, op, func(conn Conn) error {
		return getOne(ctx, conn, op, m, stmt)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMembers returns every member ordered by id, each with an empty cache.
func (c *Catalog) ListMembers(ctx context.Context) ([]*Member, error) {
	const op = "list members"
	stmt, err := c.db.sql.selectMembers()
	if err != nil {
		return nil, queryError(op, err)
	}
	var rows []Member
	err = c.db.withConn(ctx, op, func(conn Conn) error {
		var qerr error
		rows, qerr = queryAll[Member](ctx, conn, op, stmt)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	members := make([]*Member, len(rows))
	for i, r := range rows {
		members[i] = NewMember(r.ID, r.Name)
	}
	return members, nil
}

func execInsert(ctx context.Context, conn Conn, op string, stmt statement) error {
	_, err := execCount(ctx, conn, op, stmt)
	return err
}

// execOne runs a delete and maps "no row touched" to ErrNotFound.
func execOne(ctx context.Context, conn Conn, op string, stmt statement) error {
	n, err := execCount(ctx, conn, op, stmt)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func execCount(ctx context.Context, conn Conn, op string, stmt statement) (int64, error) {
	res, err := conn.ExecContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return 0, queryError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, queryError(op, err)
	}
	return n, nil
}

func getOne(ctx context.Context, conn Conn, op string, dest any, stmt statement) error {
	err := conn.GetContext(ctx, dest, stmt.query, stmt.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return queryError(op, err)
	}
	return nil
}

// queryAll iterates the result set into a slice. Rows are closed on every
// return path, including a failed Scan half way through.
func queryAll[T any](ctx context.Context, conn Conn, op string, stmt statement) ([]T, error) {
	rows, err := conn.QueryxContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.StructScan(&v); err != nil {
			return nil, queryError(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return out, nil
}
