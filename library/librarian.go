package library

import (
	"context"
	"errors"
	"log/slog"
)

// Librarian is the operator identity plus everything it may do to the
// catalog and the ledger. It is not persisted.
//
// Every method delegates to the repositories and logs store failures before
// returning them, so callers only have to tell the user what happened.
type Librarian struct {
	ID   int64
	Name string

	catalog *Catalog
	ledger  *Ledger
	log     *slog.Logger
}

// NewLibrarian wires a librarian to db.
func NewLibrarian(id int64, name string, db *Database, log *slog.Logger) *Librarian {
	if log == nil {
		log = slog.Default()
	}
	return &Librarian{
		ID:      id,
		Name:    name,
		catalog: NewCatalog(db),
		ledger:  NewLedger(db),
		log:     log.With("librarian", id),
	}
}

// Person returns the librarian as a renderable Person.
func (l *Librarian) Person() Person {
	return Person{Kind: KindLibrarian, ID: l.ID, Name: l.Name}
}

// ------------------ Books ------------------

func (l *Librarian) AddBook(ctx context.Context, b Book) error {
	err := l.catalog.AddBook(ctx, b)
	return l.report(err, "add book", "book_id", b.ID, "title", b.Title)
}

func (l *Librarian) RemoveBook(ctx context.Context, id int64) error {
	err := l.catalog.RemoveBook(ctx, id)
	return l.report(err, "remove book", "book_id", id)
}

func (l *Librarian) FindBook(ctx context.Context, id int64) (Book, error) {
	b, err := l.catalog.FindBookByID(ctx, id)
	return b, l.report(err, "find book", "book_id", id)
}

func (l *Librarian) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := l.catalog.ListBooks(ctx)
	return books, l.report(err, "list books", "count", len(books))
}

// ------------------ Members ------------------

func (l *Librarian) AddMember(ctx context.Context, m *Member) error {
	err := l.catalog.AddMember(ctx, m)
	return l.report(err, "add member", "member_id", m.ID, "name", m.Name)
}

func (l *Librarian) RemoveMember(ctx context.Context, id int64) error {
	err := l.catalog.RemoveMember(ctx, id)
	return l.report(err, "remove member", "member_id", id)
}

func (l *Librarian) FindMember(ctx context.Context, id int64) (*Member, error) {
	m, err := l.catalog.FindMemberByID(ctx, id)
	return m, l.report(err, "find member", "member_id", id)
}

func (l *Librarian) ListMembers(ctx context.Context) ([]*Member, error) {
	members, err := l.catalog.ListMembers(ctx)
	return members, l.report(err, "list members", "count", len(members))
}

// ------------------ Circulation ------------------

func (l *Librarian) Borrow(ctx context.Context, m *Member, b Book) error {
	err := l.ledger.Borrow(ctx, m, b)
	return l.report(err, "borrow book", "member_id", m.ID, "book_id", b.ID)
}

// Return reports the number of ledger rows removed.
func (l *Librarian) Return(ctx context.Context, m *Member, b Book) (int64, error) {
	n, err := l.ledger.Return(ctx, m, b)
	return n, l.report(err, "return book", "member_id", m.ID, "book_id", b.ID, "rows", n)
}

func (l *Librarian) BorrowedBooks(ctx context.Context, memberID int64) ([]Book, error) {
	books, err := l.ledger.BorrowedBooksFor(ctx, memberID)
	return books, l.report(err, "borrowed books", "member_id", memberID, "count", len(books))
}

func (l *Librarian) Outstanding(ctx context.Context, memberID, bookID int64) (int, error) {
	n, err := l.ledger.Outstanding(ctx, memberID, bookID)
	return n, l.report(err, "count borrows", "member_id", memberID, "book_id", bookID)
}

// report logs the outcome of op and passes err through unchanged. Absence is
// logged at info since it is an answer, not a failure.
func (l *Librarian) report(err error, op string, attrs ...any) error {
	switch {
	case err == nil:
		l.log.Debug(op, attrs...)
	case errors.Is(err, ErrNotFound):
		l.log.Info(op+": not found", attrs...)
	default:
		var se *StoreError
		if errors.As(err, &se) {
			attrs = append(attrs, "kind", se.Kind.String())
		}
		l.log.Error(op+" failed", append(attrs, "err", err)...)
	}
	return err
}
