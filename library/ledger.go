package library

import "context"

// Ledger records who has which book in the BorrowedBooks table.
//
// A (member, book) pair is borrowed while at least one ledger row for it
// exists. Neither transition is guarded: borrowing an already borrowed pair
// adds another row, and returning an unborrowed pair deletes nothing.
type Ledger struct {
	db *Database
}

func NewLedger(db *Database) *Ledger {
	return &Ledger{db: db}
}

// Borrow inserts a ledger row for m and b, then appends b to m's cache. The
// cache is only touched once the row is stored. Neither m nor b is checked
// for existence.
func (l *Ledger) Borrow(ctx context.Context, m *Member, b Book) error {
	const op = "borrow book"
	stmt, err := l.db.sql.insertBorrow(BorrowRecord{MemberID: m.ID, BookID: b.ID})
	if err != nil {
		return queryError(op, err)
	}
	err = l.db.withConn(ctx, op, func(conn Conn) error {
		return execInsert(ctx, conn, op, stmt)
	})
	if err != nil {
		return err
	}
	m.addBorrowed(b)
	return nil
}

// Return deletes every ledger row for m and b and removes the first equal
// entry from m's cache. It reports how many rows were deleted; zero is not
// an error.
func (l *Ledger) Return(ctx context.Context, m *Member, b Book) (int64, error) {
	const op = "return book"
	stmt, err := l.db.sql.deleteBorrow(BorrowRecord{MemberID: m.ID, BookID: b.ID})
	if err != nil {
		return 0, queryError(op, err)
	}
	var n int64
	err = l.db.withConn(ctx, op, func(conn Conn) error {
		var xerr error
		n, xerr = execCount(ctx, conn, op, stmt)
		return xerr
	})
	if err != nil {
		return 0, err
	}
	m.removeBorrowed(b)
	return n, nil
}

// BorrowedBooksFor joins the ledger with Books for memberID. A pair borrowed
// twice is listed twice; ledger rows whose book was removed are skipped.
func (l *Ledger) BorrowedBooksFor(ctx context.Context, memberID int64) ([]Book, error) {
	const op = "borrowed books"
	stmt, err := l.db.sql.selectBorrowedBooks(memberID)
	if err != nil {
		return nil, queryError(op, err)
	}
	var books []Book
	err = l.db.withConn(ctx, op, func(conn Conn) error {
		var qerr error
		books, qerr = queryAll[Book](ctx, conn, op, stmt)
		return qerr
	})
	return books, err
}

// Outstanding counts the ledger rows for one pair.
func (l *Ledger) Outstanding(ctx context.Context, memberID, bookID int64) (int, error) {
	const op = "count borrows"
	stmt, err := l.db.sql.countBorrow(BorrowRecord{MemberID: memberID, BookID: bookID})
	if err != nil {
		return 0, queryError(op, err)
	}
	var n int
	err = l.db.withConn(ctx, op, func(conn Conn) error {
		if err := conn.GetContext(ctx, &n, stmt.query, stmt.args...); err != nil {
			return queryError(op, err)
		}
		return nil
	})
	return n, err
}
