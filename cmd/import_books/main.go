package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/config"
	"library-catalog/library"
)

// importResult counts what happened to the rows of one file.
type importResult struct {
	added      int
	duplicates int
	failed     int
}

// importBooks reads id,title,author records from r and adds each one through
// lib. A header row whose first field is "id" is skipped. Bad rows are
// reported to out and counted; only an unreadable file aborts the import.
func importBooks(ctx context.Context, r io.Reader, out io.Writer, lib *library.Librarian) (importResult, error) {
	var res importResult
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			fmt.Fprintf(out, "line %d: ERROR - want 3 fields\n", line)
			res.failed++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && strings.EqualFold(rec[0], "id") {
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			fmt.Fprintf(out, "line %d: ERROR - invalid id %q\n", line, rec[0])
			res.failed++
			continue
		}
		b := library.Book{ID: id, Title: strings.TrimSpace(rec[1]), Author: strings.TrimSpace(rec[2])}

		fmt.Fprintf(out, "Importing: %s by %s... ", b.Title, b.Author)
		switch err := lib.AddBook(ctx, b); {
		case errors.Is(err, library.ErrDuplicateID):
			fmt.Fprintf(out, "SKIPPED - ID %d already exists\n", b.ID)
			res.duplicates++
		case library.IsConnectionError(err):
			fmt.Fprintln(out, "ERROR - database unreachable")
			return res, err
		case err != nil:
			fmt.Fprintf(out, "ERROR - %v\n", err)
			res.failed++
		default:
			fmt.Fprintf(out, "SUCCESS (ID: %d)\n", b.ID)
			res.added++
		}
	}
}

func newImportCmd() *cobra.Command {
	var (
		configPath string
		file       string
	)

	cmd := &cobra.Command{
		Use:          "import_books",
		Short:        "Bulk-add books from a CSV file of id,title,author rows",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := library.NewDatabase(cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			lib := library.NewLibrarian(cfg.Librarian.ID, cfg.Librarian.Name, db, log)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Importing books from %s...\n", file)
			res, err := importBooks(ctx, f, out, lib)
			fmt.Fprintf(out, "\nImport complete!\n")
			fmt.Fprintf(out, "Successfully imported: %d books\n", res.added)
			fmt.Fprintf(out, "Already present: %d\n", res.duplicates)
			fmt.Fprintf(out, "Errors: %d\n", res.failed)
			if err != nil {
				return err
			}

			if res.added > 0 {
				books, err := lib.ListBooks(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "\nCatalog:")
				fmt.Fprintf(out, "%-5s %-50s %-30s\n", "ID", "Title", "Author")
				fmt.Fprintln(out, strings.Repeat("-", 87))
				for _, b := range books {
					fmt.Fprintf(out, "%-5d %-50s %-30s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file")
	cmd.Flags().StringVar(&file, "file", "books.csv", "CSV file with id,title,author rows")
	cmd.Flags().String("db-driver", "sqlite3", "database driver: sqlite3, mysql, postgres or pgx")
	cmd.Flags().String("db-path", "library.db", "sqlite3 database file")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
	return cmd
}

func main() {
	if err := newImportCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// truncateString shortens s to at most maxLen characters, counted in runes.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
