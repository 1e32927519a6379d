package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_store.go -package=book

// Store defines the contract for book storage backends.
//
// Implementations assign ids, keep them unique for the store's lifetime and
// report unknown ids as *NotFoundError. List returns the requested window in
// ascending id order together with the number of records passing the filter.
// Inputs reaching a Store have already been validated.
type Store interface {
	Create(ctx context.Context, in AddBook) (Book, error)
	Get(ctx context.Context, id int64) (Book, error)
	Update(ctx context.Context, id int64, patch UpdateBook) (Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter, p PageRequest) ([]Book, int, error)
}
