package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBooks(t *testing.T) {
	reg := NewRegistry()
	dune := Book{ID: 1, Title: "Dune", Author: "Herbert"}
	emma := Book{ID: 2, Title: "Emma", Author: "Austen"}

	reg.AddBook(dune)
	reg.AddBook(emma)
	assert.Equal(t, []Book{dune, emma}, reg.Books())

	assert.False(t, reg.RemoveBook(Book{ID: 1, Title: "Dune", Author: "someone else"}))
	assert.True(t, reg.RemoveBook(Book{ID: 1, Title: "Dune", Author: "Herbert"}))
	assert.Equal(t, []Book{emma}, reg.Books())
}

func TestRegistryRemovesBookLoadedFromStore(t *testing.T) {
	cat := NewCatalog(tempDB(t))
	ctx := context.Background()
	reg := NewRegistry()

	dune := Book{ID: 1, Title: "Dune", Author: "Herbert"}
	require.NoError(t, cat.AddBook(ctx, dune))
	reg.AddBook(dune)

	loaded, err := cat.FindBookByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, reg.RemoveBook(loaded))
	assert.Empty(t, reg.Books())
}

func TestRegistryBooksIsACopy(t *testing.T) {
	reg := NewRegistry()
	reg.AddBook(Book{ID: 1})

	books := reg.Books()
	books[0].ID = 99
	assert.Equal(t, int64(1), reg.Books()[0].ID)
}

func TestRegistryMembers(t *testing.T) {
	reg := NewRegistry()
	alice := NewMember(1, "Alice")
	bob := NewMember(2, "Bob")

	reg.AddMember(alice)
	reg.AddMember(bob)

	got, ok := reg.Member(1)
	require.True(t, ok)
	assert.Same(t, alice, got)

	replacement := NewMember(1, "Alice B.")
	reg.AddMember(replacement)
	got, _ = reg.Member(1)
	assert.Same(t, replacement, got)
	assert.Len(t, reg.Members(), 2)

	_, ok = reg.Member(3)
	assert.False(t, ok)
}
