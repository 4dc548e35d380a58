package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"library-catalog/library"
)

const menuText = `
Library System Menu:
1. Add Book
2. Remove Book
3. Borrow Book
4. Return Book
5. List Books
6. List Members
7. Add Member
8. Search Book by ID
9. Search Member by ID
10. Get Borrowed Books by Member ID
11. Exit
`

const optionExit = 11

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// menu is the interactive console. It runs one request at a time and keeps
// going after any failed operation.
type menu struct {
	sc  *bufio.Scanner
	out io.Writer
	lib *library.Librarian
	reg *library.Registry
}

func newMenu(in io.Reader, out io.Writer, lib *library.Librarian, reg *library.Registry) *menu {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &menu{sc: sc, out: out, lib: lib, reg: reg}
}

// run loops until Exit is chosen or input ends.
func (m *menu) run(ctx context.Context) {
	for {
		fmt.Fprint(m.out, menuText)
		line, ok := scanLine(m.sc, m.out, "Choose an option: ")
		if !ok {
			break
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid option. Try again.")
			continue
		}
		if choice == optionExit {
			break
		}
		if !m.dispatch(ctx, choice) {
			break
		}
	}
	m.summary()
}

// dispatch runs one menu option. It returns false when input ran out in the
// middle of the option's prompts.
func (m *menu) dispatch(ctx context.Context, choice int) bool {
	switch choice {
	case 1:
		return m.addBook(ctx)
	case 2:
		return m.removeBook(ctx)
	case 3:
		return m.borrowBook(ctx)
	case 4:
		return m.returnBook(ctx)
	case 5:
		m.listBooks(ctx)
	case 6:
		m.listMembers(ctx)
	case 7:
		return m.addMember(ctx)
	case 8:
		return m.searchBook(ctx)
	case 9:
		return m.searchMember(ctx)
	case 10:
		return m.borrowedBooks(ctx)
	default:
		fmt.Fprintln(m.out, "Invalid option. Try again.")
	}
	return true
}

// readID prompts for an integer id. ok is false at end of input; valid is
// false (with a message already printed) when the input is not a number.
func (m *menu) readID(prompt string) (id int64, valid, ok bool) {
	line, ok := scanLine(m.sc, m.out, prompt)
	if !ok {
		return 0, false, false
	}
	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid number: %q\n", line)
		return 0, false, true
	}
	return id, true, true
}

func (m *menu) readText(prompt string) (string, bool) {
	return scanLine(m.sc, m.out, prompt)
}

// failed prints a one-line message for a store failure. Details are already
// in the log.
func (m *menu) failed(action string, err error) {
	switch {
	case library.IsConnectionError(err):
		fmt.Fprintf(m.out, "Could not %s: the database is unreachable.\n", action)
	case errors.Is(err, library.ErrDuplicateID):
		fmt.Fprintf(m.out, "Could not %s: that ID is already in use.\n", action)
	default:
		fmt.Fprintf(m.out, "Could not %s: %v\n", action, err)
	}
}

func (m *menu) addBook(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Book ID: ")
	if !ok || !valid {
		return ok
	}
	title, ok := m.readText("Enter Book Title: ")
	if !ok {
		return false
	}
	author, ok := m.readText("Enter Book Author: ")
	if !ok {
		return false
	}

	b := library.Book{ID: id, Title: title, Author: author}
	if err := m.lib.AddBook(ctx, b); err != nil {
		m.failed("add book", err)
		return true
	}
	m.reg.AddBook(b)
	fmt.Fprintf(m.out, "Book added to database: %s\n", b.Title)
	return true
}

func (m *menu) removeBook(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Book ID to Remove: ")
	if !ok || !valid {
		return ok
	}

	b, err := m.lib.FindBook(ctx, id)
	if err == nil {
		err = m.lib.RemoveBook(ctx, id)
	}
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintf(m.out, "Book not found with ID: %d\n", id)
	case err != nil:
		m.failed("remove book", err)
	default:
		m.reg.RemoveBook(b)
		fmt.Fprintf(m.out, "Book removed from database with ID: %d\n", id)
	}
	return true
}

// resolveMember prefers the session's instance so borrow caches accumulate
// across menu actions, and falls back to the store.
func (m *menu) resolveMember(ctx context.Context, id int64) (*library.Member, error) {
	if mem, ok := m.reg.Member(id); ok {
		return mem, nil
	}
	mem, err := m.lib.FindMember(ctx, id)
	if err != nil {
		return nil, err
	}
	m.reg.AddMember(mem)
	return mem, nil
}

// readLoan prompts for a member and a book id and loads both.
func (m *menu) readLoan(ctx context.Context, bookPrompt string) (mem *library.Member, b library.Book, found, ok bool) {
	memberID, valid, ok := m.readID("Enter Member ID: ")
	if !ok || !valid {
		return nil, b, false, ok
	}
	bookID, valid, ok := m.readID(bookPrompt)
	if !ok || !valid {
		return nil, b, false, ok
	}

	mem, err := m.resolveMember(ctx, memberID)
	if err == nil {
		b, err = m.lib.FindBook(ctx, bookID)
	}
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintln(m.out, "Member or Book not found.")
		return nil, b, false, true
	case err != nil:
		m.failed("look up member and book", err)
		return nil, b, false, true
	}
	return mem, b, true, true
}

func (m *menu) borrowBook(ctx context.Context) bool {
	mem, b, found, ok := m.readLoan(ctx, "Enter Book ID to Borrow: ")
	if !found {
		return ok
	}
	if err := m.lib.Borrow(ctx, mem, b); err != nil {
		m.failed("borrow book", err)
		return true
	}
	fmt.Fprintf(m.out, "Book with ID %d borrowed by member with ID %d\n", b.ID, mem.ID)
	fmt.Fprintf(m.out, "%s borrowed %s\n", mem.Name, b.Title)
	m.outstanding(ctx, mem.ID, b.ID)
	return true
}

func (m *menu) returnBook(ctx context.Context) bool {
	mem, b, found, ok := m.readLoan(ctx, "Enter Book ID to Return: ")
	if !found {
		return ok
	}
	n, err := m.lib.Return(ctx, mem, b)
	if err != nil {
		m.failed("return book", err)
		return true
	}
	fmt.Fprintf(m.out, "Book with ID %d returned by member with ID %d\n", b.ID, mem.ID)
	fmt.Fprintf(m.out, "%s returned %s\n", mem.Name, b.Title)
	fmt.Fprintf(m.out, "Loan records removed: %d\n", n)
	m.outstanding(ctx, mem.ID, b.ID)
	return true
}

// outstanding prints how many loan records the pair still has. More than
// one means the same book was borrowed again before being returned.
func (m *menu) outstanding(ctx context.Context, memberID, bookID int64) {
	n, err := m.lib.Outstanding(ctx, memberID, bookID)
	if err != nil {
		m.failed("count loans", err)
		return
	}
	fmt.Fprintf(m.out, "Outstanding loan records for this book and member: %d\n", n)
}

func (m *menu) listBooks(ctx context.Context) {
	books, err := m.lib.ListBooks(ctx)
	if err != nil {
		m.failed("list books", err)
		return
	}
	fmt.Fprintln(m.out, "Books in the library:")
	for _, b := range books {
		b.RenderDetails(m.out)
	}
}

func (m *menu) listMembers(ctx context.Context) {
	members, err := m.lib.ListMembers(ctx)
	if err != nil {
		m.failed("list members", err)
		return
	}
	fmt.Fprintln(m.out, "Library Members:")
	for _, mem := range members {
		if have, ok := m.reg.Member(mem.ID); ok {
			mem = have
		}
		m.render(mem.Person())
	}
}

func (m *menu) addMember(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Member ID: ")
	if !ok || !valid {
		return ok
	}
	name, ok := m.readText("Enter Member Name: ")
	if !ok {
		return false
	}

	mem := library.NewMember(id, name)
	if err := m.lib.AddMember(ctx, mem); err != nil {
		m.failed("add member", err)
		return true
	}
	m.reg.AddMember(mem)
	fmt.Fprintf(m.out, "Member added: %s\n", mem.Name)
	return true
}

func (m *menu) searchBook(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Book ID: ")
	if !ok || !valid {
		return ok
	}
	b, err := m.lib.FindBook(ctx, id)
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintf(m.out, "No book found with ID: %d\n", id)
	case err != nil:
		m.failed("find book", err)
	default:
		b.RenderDetails(m.out)
	}
	return true
}

func (m *menu) searchMember(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Member ID: ")
	if !ok || !valid {
		return ok
	}
	mem, err := m.resolveMember(ctx, id)
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintf(m.out, "No member found with ID: %d\n", id)
	case err != nil:
		m.failed("find member", err)
	default:
		m.render(mem.Person())
	}
	return true
}

func (m *menu) borrowedBooks(ctx context.Context) bool {
	id, valid, ok := m.readID("Enter Member ID to see borrowed books: ")
	if !ok || !valid {
		return ok
	}
	books, err := m.lib.BorrowedBooks(ctx, id)
	switch {
	case err != nil:
		m.failed("list borrowed books", err)
	case len(books) == 0:
		fmt.Fprintf(m.out, "No books borrowed by member with ID: %d\n", id)
	default:
		fmt.Fprintln(m.out, "Borrowed Books:")
		for _, b := range books {
			b.RenderDetails(m.out)
		}
	}
	return true
}

func (m *menu) render(p library.Person) {
	if err := p.RenderDetails(m.out); err != nil {
		fmt.Fprintf(m.out, "Cannot display %s: %v\n", p.Kind, err)
	}
}

// summary reports what this session registered before leaving.
func (m *menu) summary() {
	fmt.Fprintf(m.out, "Session: %d book(s) and %d member(s) registered.\n",
		len(m.reg.Books()), len(m.reg.Members()))
	m.render(m.lib.Person())
	fmt.Fprintln(m.out, "Goodbye!")
}
