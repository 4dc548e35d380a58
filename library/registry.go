package library

// Registry holds the books and members touched during this process. It is
// not persisted and never loaded from the store, so after a restart it starts
// empty whatever the tables contain.
//
// Books are kept by value and removed by value equality. Members are kept by
// pointer so that one session shares a single instance, and with it a single
// borrow cache, per member id.
type Registry struct {
	books   []Book
	members []*Member
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) AddBook(b Book) {
	r.books = append(r.books, b)
}

// RemoveBook drops the first book equal to b and reports whether one was
// found.
func (r *Registry) RemoveBook(b Book) bool {
	for i, have := range r.books {
		if have == b {
			r.books = append(r.books[:i], r.books[i+1:]...)
			return true
		}
	}
	return false
}

// Books returns a copy of the registered books in insertion order.
func (r *Registry) Books() []Book {
	return append([]Book(nil), r.books...)
}

// AddMember registers m. A member with the same id is replaced.
func (r *Registry) AddMember(m *Member) {
	for i, have := range r.members {
		if have.ID == m.ID {
			r.members[i] = m
			return
		}
	}
	r.members = append(r.members, m)
}

// Member returns the registered instance for id.
func (r *Registry) Member(id int64) (*Member, bool) {
	for _, m := range r.members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (r *Registry) Members() []*Member {
	return append([]*Member(nil), r.members...)
}
