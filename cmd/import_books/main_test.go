package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/config"
	"library-catalog/library"
)

func TestImportBooks(t *testing.T) {
	cfg := config.Database{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "import.db")}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := library.NewDatabase(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))
	lib := library.NewLibrarian(1, "Alice", db, log)

	csv := strings.Join([]string{
		"id,title,author",
		"1,Dune,Frank Herbert",
		"2, Emma , Jane Austen",
		"1,Dune again,Frank Herbert",
		"x,Broken,Nobody",
		"3,Too,Many,Fields",
		"4,1984,George Orwell",
	}, "\n")

	var out bytes.Buffer
	res, err := importBooks(ctx, strings.NewReader(csv), &out, lib)
	require.NoError(t, err)

	assert.Equal(t, importResult{added: 3, duplicates: 1, failed: 2}, res)
	assert.Contains(t, out.String(), "SKIPPED - ID 1 already exists")

	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []library.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert"},
		{ID: 2, Title: "Emma", Author: "Jane Austen"},
		{ID: 4, Title: "1984", Author: "George Orwell"},
	}, books)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))

	got := truncateString("Les Misérables é", 10)
	assert.Equal(t, "Les Mis...", got)
	assert.Equal(t, "Crime et châtiment", truncateString("Crime et châtiment", 18))
	assert.True(t, utf8.ValidString(truncateString("ééééééééé", 5)))
	assert.Equal(t, "éé...", truncateString("ééééééééé", 5))
}

func TestImportCmdUsesConfiguredLogger(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("1,Dune,Frank Herbert\n"), 0o644))

	cmd := newImportCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--file", csvPath, "--db-path", filepath.Join(dir, "cli.db"), "--log-level", "debug"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Successfully imported: 1 books")
	assert.Contains(t, errOut.String(), "level=DEBUG")
}
