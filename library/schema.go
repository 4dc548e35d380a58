package library

import "context"

// EnsureSchema creates the Books, Members and BorrowedBooks tables when they
// do not exist yet. Existing tables are left untouched.
func (d *Database) EnsureSchema(ctx context.Context) error {
	return d.withConn(ctx, "ensure schema", func(c Conn) error {
		for _, ddl := range d.sql.createTables() {
			if _, err := c.ExecContext(ctx, ddl); err != nil {
				return queryError("ensure schema", err)
			}
		}
		d.log.Debug("schema ready")
		return nil
	})
}
