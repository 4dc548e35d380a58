package library

import (
	"fmt"
	"io"
)

// PersonKind tags the closed set of people the system knows about.
type PersonKind int

const (
	KindLibrarian PersonKind = iota + 1
	KindMember
)

func (k PersonKind) String() string {
	switch k {
	case KindLibrarian:
		return "librarian"
	case KindMember:
		return "member"
	default:
		return fmt.Sprintf("PersonKind(%d)", int(k))
	}
}

// Person is the shared view of a librarian or a member: a name, an id and a
// kind-specific detail rendering. Borrowed is only meaningful for members.
type Person struct {
	Kind     PersonKind
	ID       int64
	Name     string
	Borrowed []Book
}

var renderers = map[PersonKind]func(io.Writer, Person){
	KindLibrarian: renderLibrarian,
	KindMember:    renderMember,
}

// RenderDetails writes the detail block for p using the renderer of its kind.
func (p Person) RenderDetails(w io.Writer) error {
	render, ok := renderers[p.Kind]
	if !ok {
		return fmt.Errorf("render %s: no renderer", p.Kind)
	}
	render(w, p)
	return nil
}

func renderLibrarian(w io.Writer, p Person) {
	fmt.Fprintf(w, "Librarian Name: %s\n", p.Name)
	fmt.Fprintf(w, "Librarian ID: %d\n", p.ID)
}

func renderMember(w io.Writer, p Person) {
	fmt.Fprintf(w, "Member Name: %s\n", p.Name)
	fmt.Fprintf(w, "Member ID: %d\n", p.ID)
	fmt.Fprintln(w, "Borrowed Books: ")
	for _, b := range p.Borrowed {
		fmt.Fprintf(w, " - %s\n", b.Title)
	}
}
