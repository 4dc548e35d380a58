package library

import (
	"fmt"
	"io"
)

// Book is a catalog entry. It is a plain comparable value: two Books are the
// same book when all their fields are equal, regardless of where they were
// loaded from.
type Book struct {
	ID     int64  `db:"id"`
	Title  string `db:"title"`
	Author string `db:"author"`
}

// RenderDetails writes the multi-line detail block for the book.
func (b Book) RenderDetails(w io.Writer) {
	fmt.Fprintf(w, "Book Title: %s\n", b.Title)
	fmt.Fprintf(w, "Author: %s\n", b.Author)
	fmt.Fprintf(w, "Book ID: %d\n", b.ID)
}

// Member is a registered borrower.
//
// BorrowedBooks is a cache owned by this instance. Only Ledger.Borrow and
// Ledger.Return on this same *Member change it; loading the member again from
// the store yields an empty cache. Use Ledger.BorrowedBooksFor for the
// persisted view.
type Member struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	BorrowedBooks []Book `db:"-"`
}

// NewMember returns a member with an empty borrow cache.
func NewMember(id int64, name string) *Member {
	return &Member{ID: id, Name: name, BorrowedBooks: []Book{}}
}

// Person returns the member as a renderable Person.
func (m *Member) Person() Person {
	return Person{Kind: KindMember, ID: m.ID, Name: m.Name, Borrowed: m.BorrowedBooks}
}

func (m *Member) addBorrowed(b Book) {
	m.BorrowedBooks = append(m.BorrowedBooks, b)
}

// removeBorrowed drops the first entry equal to b and reports whether one was
// found.
func (m *Member) removeBorrowed(b Book) bool {
	for i, have := range m.BorrowedBooks {
		if have == b {
			m.BorrowedBooks = append(m.BorrowedBooks[:i], m.BorrowedBooks[i+1:]...)
			return true
		}
	}
	return false
}

// BorrowRecord is one row of the ledger. Its existence is the borrowed state.
type BorrowRecord struct {
	MemberID int64 `db:"member_id"`
	BookID   int64 `db:"book_id"`
}
