package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/config"
	"library-catalog/library"
)

func newTestLibrarian(t *testing.T) (*library.Librarian, *library.Database) {
	t.Helper()
	cfg := config.Database{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "menu.db")}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := library.NewDatabase(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return library.NewLibrarian(1, "Alice", db, log), db
}

// runSession feeds one input line per element and returns everything the
// menu printed.
func runSession(t *testing.T, lib *library.Librarian, reg *library.Registry, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	newMenu(in, &out, lib, reg).run(context.Background())
	return out.String()
}

func TestMenuBorrowAndReturn(t *testing.T) {
	lib, _ := newTestLibrarian(t)
	reg := library.NewRegistry()

	out := runSession(t, lib, reg,
		"1", "1", "Dune", "Herbert",
		"7", "1", "Alice",
		"3", "1", "1",
		"10", "1",
		"9", "1",
		"4", "1", "1",
		"10", "1",
		"11",
	)

	assert.Contains(t, out, "Book added to database: Dune")
	assert.Contains(t, out, "Member added: Alice")
	assert.Contains(t, out, "Book with ID 1 borrowed by member with ID 1")
	assert.Contains(t, out, "Alice borrowed Dune")
	assert.Contains(t, out, "Outstanding loan records for this book and member: 1")
	assert.Contains(t, out, "Borrowed Books:\nBook Title: Dune\nAuthor: Herbert\nBook ID: 1\n")
	assert.Contains(t, out, "Member Name: Alice\nMember ID: 1\nBorrowed Books: \n - Dune\n")
	assert.Contains(t, out, "Alice returned Dune")
	assert.Contains(t, out, "Loan records removed: 1")
	assert.Contains(t, out, "Outstanding loan records for this book and member: 0")
	assert.Contains(t, out, "No books borrowed by member with ID: 1")
	assert.Contains(t, out, "Session: 1 book(s) and 1 member(s) registered.")
	assert.Contains(t, out, "Librarian Name: Alice")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestMenuNotFoundKeepsRunning(t *testing.T) {
	lib, _ := newTestLibrarian(t)

	out := runSession(t, lib, library.NewRegistry(),
		"8", "999",
		"9", "999",
		"2", "999",
		"3", "1", "999",
		"5",
		"11",
	)

	assert.Contains(t, out, "No book found with ID: 999")
	assert.Contains(t, out, "No member found with ID: 999")
	assert.Contains(t, out, "Book not found with ID: 999")
	assert.Contains(t, out, "Member or Book not found.")
	assert.Contains(t, out, "Books in the library:\n")
	assert.Contains(t, out, "Goodbye!")
}

func TestMenuRemovesBooksFromEarlierSessions(t *testing.T) {
	lib, _ := newTestLibrarian(t)
	ctx := context.Background()
	require.NoError(t, lib.AddBook(ctx, library.Book{ID: 5, Title: "Emma", Author: "Austen"}))

	out := runSession(t, lib, library.NewRegistry(), "2", "5", "11")
	assert.Contains(t, out, "Book removed from database with ID: 5")

	_, err := lib.FindBook(ctx, 5)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestMenuInvalidInput(t *testing.T) {
	lib, _ := newTestLibrarian(t)

	out := runSession(t, lib, library.NewRegistry(),
		"abc",
		"42",
		"1", "not-a-number",
		"11",
	)

	assert.Equal(t, 2, strings.Count(out, "Invalid option. Try again."))
	assert.Contains(t, out, `Invalid number: "not-a-number"`)
	assert.Contains(t, out, "Goodbye!")
}

func TestMenuDuplicateAndUnreachable(t *testing.T) {
	lib, db := newTestLibrarian(t)
	reg := library.NewRegistry()

	out := runSession(t, lib, reg,
		"1", "1", "Dune", "Herbert",
		"1", "1", "Emma", "Austen",
		"11",
	)
	assert.Contains(t, out, "Could not add book: that ID is already in use.")
	assert.Equal(t, []library.Book{{ID: 1, Title: "Dune", Author: "Herbert"}}, reg.Books())

	require.NoError(t, db.Close())
	out = runSession(t, lib, reg, "5", "11")
	assert.Contains(t, out, "Could not list books: the database is unreachable.")
}

func TestMenuEndOfInput(t *testing.T) {
	lib, _ := newTestLibrarian(t)

	out := runSession(t, lib, library.NewRegistry(), "1", "3", "Half a book")
	assert.Contains(t, out, "Enter Book Author: ")
	assert.Contains(t, out, "Goodbye!")
}

func TestMenuShowsDuplicateBorrow(t *testing.T) {
	lib, _ := newTestLibrarian(t)
	ctx := context.Background()
	require.NoError(t, lib.AddBook(ctx, library.Book{ID: 1, Title: "Dune", Author: "Herbert"}))
	require.NoError(t, lib.AddMember(ctx, library.NewMember(1, "Alice")))

	out := runSession(t, lib, library.NewRegistry(),
		"3", "1", "1",
		"3", "1", "1",
		"4", "1", "1",
		"11",
	)

	assert.Contains(t, out, "Outstanding loan records for this book and member: 2")
	assert.Contains(t, out, "Loan records removed: 2")
	assert.Contains(t, out, "Outstanding loan records for this book and member: 0")
}

func TestMenuReportsOverlongInput(t *testing.T) {
	lib, _ := newTestLibrarian(t)

	out := runSession(t, lib, library.NewRegistry(), strings.Repeat("x", maxLineBytes+1), "11")
	assert.Contains(t, out, "Input error: bufio.Scanner: token too long")
	assert.Contains(t, out, "Goodbye!")
}

// runRoot executes the librarycli command tree against a fresh sqlite file
// in its own directory.
func runRoot(t *testing.T, dbPath, input string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--db-path", dbPath))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandCreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fresh.db")

	out, err := runRoot(t, dbPath, "1\n1\nDune\nHerbert\n5\n11\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Book added to database: Dune")
	assert.Contains(t, out, "Books in the library:\nBook Title: Dune")
	assert.NotContains(t, out, "Could not")
}

func TestRemoveMemberCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "members.db")
	_, err := runRoot(t, dbPath, "7\n4\nBob\n11\n")
	require.NoError(t, err)

	out, err := runRoot(t, dbPath, "", "remove-member", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Member removed with ID: 4")

	_, err = runRoot(t, dbPath, "", "remove-member", "4")
	assert.EqualError(t, err, "no member found with ID: 4")

	_, err = runRoot(t, dbPath, "", "remove-member", "four")
	assert.EqualError(t, err, `invalid member id "four"`)
}
