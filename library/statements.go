package library

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const (
	tableBooks    = "Books"
	tableMembers  = "Members"
	tableBorrowed = "BorrowedBooks"

	colID       = "id"
	colTitle    = "title"
	colAuthor   = "author"
	colName     = "name"
	colMemberID = "member_id"
	colBookID   = "book_id"
)

// dialect pairs a goqu dialect with the identifier quote the DDL must use so
// that table names resolve identically in hand-written and generated SQL.
type dialect struct {
	name  string
	quote string
}

var dialects = map[string]dialect{
	"sqlite3":  {name: "sqlite3", quote: "`"},
	"mysql":    {name: "mysql", quote: "`"},
	"postgres": {name: "postgres", quote: `"`},
	"pgx":      {name: "postgres", quote: `"`},
}

// statement is a rendered parameterized query.
type statement struct {
	query string
	args  []any
}

// statements renders every query the repositories run. All output is
// prepared: values travel as bind arguments, never inline.
type statements struct {
	d     goqu.DialectWrapper
	quote string
}

func newStatements(d dialect) statements {
	return statements{d: goqu.Dialect(d.name), quote: d.quote}
}

func build(query string, args []any, err error) (statement, error) {
	return statement{query: query, args: args}, err
}

func (s statements) insertBook(b Book) (statement, error) {
	return build(s.d.Insert(tableBooks).
		Cols(colID, colTitle, colAuthor).
		Vals(goqu.Vals{b.ID, b.Title, b.Author}).
		Prepared(true).ToSQL())
}

func (s statements) deleteBook(id int64) (statement, error) {
	return build(s.d.Delete(tableBooks).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).ToSQL())
}

func (s statements) selectBook(id int64) (statement, error) {
	return build(s.d.From(tableBooks).
		Select(colID, colTitle, colAuthor).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).ToSQL())
}

func (s statements) selectBooks() (statement, error) {
	return build(s.d.From(tableBooks).
		Select(colID, colTitle, colAuthor).
		Order(goqu.C(colID).Asc()).
		Prepared(true).ToSQL())
}

func (s statements) insertMember(m *Member) (statement, error) {
	return build(s.d.Insert(tableMembers).
		Cols(colID, colName).
		Vals(goqu.Vals{m.ID, m.Name}).
		Prepared(true).ToSQL())
}

func (s statements) deleteMember(id int64) (statement, error) {
	return build(s.d.Delete(tableMembers).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).ToSQL())
}

func (s statements) selectMember(id int64) (statement, error) {
	return build(s.d.From(tableMembers).
		Select(colID, colName).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).ToSQL())
}

func (s statements) selectMembers() (statement, error) {
	return build(s.d.From(tableMembers).
		Select(colID, colName).
		Order(goqu.C(colID).Asc()).
		Prepared(true).ToSQL())
}

func (s statements) insertBorrow(r BorrowRecord) (statement, error) {
	return build(s.d.Insert(tableBorrowed).
		Cols(colMemberID, colBookID).
		Vals(goqu.Vals{r.MemberID, r.BookID}).
		Prepared(true).ToSQL())
}

// deleteBorrow matches every row of the pair, not just one.
func (s statements) deleteBorrow(r BorrowRecord) (statement, error) {
	return build(s.d.Delete(tableBorrowed).
		Where(goqu.Ex{colMemberID: r.MemberID, colBookID: r.BookID}).
		Prepared(true).ToSQL())
}

func (s statements) countBorrow(r BorrowRecord) (statement, error) {
	return build(s.d.From(tableBorrowed).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{colMemberID: r.MemberID, colBookID: r.BookID}).
		Prepared(true).ToSQL())
}

func (s statements) selectBorrowedBooks(memberID int64) (statement, error) {
	return build(s.d.From(goqu.T(tableBorrowed).As("bb")).
		InnerJoin(goqu.T(tableBooks).As("b"), goqu.On(goqu.I("bb."+colBookID).Eq(goqu.I("b."+colID)))).
		Select(goqu.I("b."+colID), goqu.I("b."+colTitle), goqu.I("b."+colAuthor)).
		Where(goqu.I("bb." + colMemberID).Eq(memberID)).
		Prepared(true).ToSQL())
}

// createTables returns the DDL for the three tables. The ledger has no
// primary key so repeated borrows of the same pair are stored as-is.
func (s statements) createTables() []string {
	q := func(name string) string { return s.quote + name + s.quote }
	return []string{
		"CREATE TABLE IF NOT EXISTS " + q(tableBooks) + " (" +
			q(colID) + " INTEGER PRIMARY KEY, " +
			q(colTitle) + " TEXT, " +
			q(colAuthor) + " TEXT)",
		"CREATE TABLE IF NOT EXISTS " + q(tableMembers) + " (" +
			q(colID) + " INTEGER PRIMARY KEY, " +
			q(colName) + " TEXT)",
		"CREATE TABLE IF NOT EXISTS " + q(tableBorrowed) + " (" +
			q(colMemberID) + " INTEGER, " +
			q(colBookID) + " INTEGER)",
	}
}
