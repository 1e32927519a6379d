package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"bookcatalog/internal/book"
)

// Memory is a transient book.Store. Books are kept in ascending id order;
// ids come from a counter that deletes never decrement.
type Memory struct {
	mu     sync.RWMutex
	books  []book.Book
	lastID int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Create(_ context.Context, in book.AddBook) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	b := book.Book{
		ID:        m.lastID,
		Title:     in.Title,
		Author:    in.Author,
		Year:      in.Year,
		ISBN:      in.ISBN,
		Available: true,
	}
	m.books = append(m.books, b)
	return b, nil
}

func (m *Memory) Get(_ context.Context, id int64) (book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return book.Book{}, &book.NotFoundError{ID: id}
	}
	return m.books[i], nil
}

func (m *Memory) Update(_ context.Context, id int64, patch book.UpdateBook) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return book.Book{}, &book.NotFoundError{ID: id}
	}
	m.books[i] = patch.Apply(m.books[i])
	return m.books[i], nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return &book.NotFoundError{ID: id}
	}
	m.books = slices.Delete(m.books, i, i+1)
	return nil
}

func (m *Memory) List(_ context.Context, f book.Filter, p book.PageRequest) ([]book.Book, int, error) {
	p = p.Normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]book.Book, 0, len(m.books))
	for _, b := range m.books {
		if f.Match(b) {
			matched = append(matched, b)
		}
	}

	start, end := p.Window(len(matched))
	out := make([]book.Book, end-start)
	copy(out, matched[start:end])
	return out, len(matched), nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// indexOf finds id in the id-ordered slice. Callers hold the lock.
func (m *Memory) indexOf(id int64) int {
	i, found := slices.BinarySearchFunc(m.books, id, func(b book.Book, target int64) int {
		return cmp.Compare(b.ID, target)
	})
	if !found {
		return -1
	}
	return i
}
