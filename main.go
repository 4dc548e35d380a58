package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
)

// readPassword reads a password from the terminal without echoing it.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(bytePassword)), nil
}

type options struct {
	configPath  string
	askPassword bool
}

// setup loads configuration and opens the store handle.
func setup(cmd *cobra.Command, opts *options) (*config.Config, *library.Database, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.askPassword {
		pw, err := readPassword(fmt.Sprintf("Database password for %s: ", cfg.Database.User))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read password: %w", err)
		}
		cfg.Database.Password = pw
	}
	db, err := library.NewDatabase(cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, log, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "librarycli",
		Short:         "Console catalog of books, members and loans",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, log, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			lib := library.NewLibrarian(cfg.Librarian.ID, cfg.Librarian.Name, db, log)
			m := newMenu(cmd.InOrStdin(), cmd.OutOrStdout(), lib, library.NewRegistry())
			m.run(cmd.Context())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a config file (default ./config.yaml or ./config/config.yaml)")
	pf.BoolVar(&opts.askPassword, "ask-password", false, "prompt for the database password")
	pf.String("db-driver", "sqlite3", "database driver: sqlite3, mysql, postgres or pgx")
	pf.String("db-path", "library.db", "sqlite3 database file")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Create the Books, Members and BorrowedBooks tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, _, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema ready.")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "remove-member ID",
		Short: "Delete a member by id; their loan rows are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			cfg, db, log, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			lib := library.NewLibrarian(cfg.Librarian.ID, cfg.Librarian.Name, db, log)
			if err := lib.RemoveMember(cmd.Context(), id); err != nil {
				if errors.Is(err, library.ErrNotFound) {
					return fmt.Errorf("no member found with ID: %d", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Member removed with ID: %d\n", id)
			return nil
		},
	})

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// scanLine prompts and returns the next trimmed input line. ok is false at
// end of input or when the input can no longer be read.
func scanLine(sc *bufio.Scanner, out io.Writer, prompt string) (line string, ok bool) {
	fmt.Fprint(out, prompt)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			fmt.Fprintf(out, "\nInput error: %v\n", err)
		}
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}
