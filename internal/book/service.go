package book

import (
	"context"
)

// Service provides book-related business logic on top of a Store.
type Service struct {
	store     Store
	validator *Validator
}

// NewService creates a new book service validating against the wall clock.
func NewService(store Store) *Service {
	return NewServiceWithValidator(store, NewValidator(nil))
}

// NewServiceWithValidator creates a service with a caller-supplied validator.
func NewServiceWithValidator(store Store, v *Validator) *Service {
	return &Service{store: store, validator: v}
}

// Create validates in and stores a new, available book.
func (s *Service) Create(ctx context.Context, in AddBook) (Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return Book{}, err
	}
	return s.store.Create(ctx, in)
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.store.Get(ctx, id)
}

// Update merges patch into the stored book. Patched fields are not
// re-validated.
func (s *Service) Update(ctx context.Context, id int64, patch UpdateBook) (Book, error) {
	return s.store.Update(ctx, id, patch)
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// List returns one page of the books matching f.
func (s *Service) List(ctx context.Context, f Filter, p PageRequest) (Page, error) {
	p = p.Normalize()
	books, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return Page{}, err
	}
	return NewPage(books, total, p), nil
}
