package store

// Repository implementation (Postgres)

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/book"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPGTimeout = 3 * time.Second

// BookPG is a book.Store backed by the PostgreSQL "books" table. Ids come
// from the table's identity column.
type BookPG struct {
	db      *pgxpool.Pool
	timeout time.Duration
	q       bookQueries
}

// NewBookPG wraps db. A non-positive timeout falls back to three seconds.
func NewBookPG(db *pgxpool.Pool, timeout time.Duration) *BookPG {
	if timeout <= 0 {
		timeout = defaultPGTimeout
	}
	return &BookPG{db: db, timeout: timeout, q: newBookQueries(dialectPostgres)}
}

func (r *BookPG) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *BookPG) Create(ctx context.Context, in book.AddBook) (book.Book, error) {
	query, args, err := r.q.insert(in, true)
	if err != nil {
		return book.Book{}, fmt.Errorf("build insert: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return book.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (r *BookPG) Get(ctx context.Context, id int64) (book.Book, error) {
	query, args, err := r.q.selectByID(id)
	if err != nil {
		return book.Book{}, fmt.Errorf("build select: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, &book.NotFoundError{ID: id}
		}
		return book.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (r *BookPG) Update(ctx context.Context, id int64, patch book.UpdateBook) (book.Book, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}
	query, args, err := r.q.update(id, patch, true)
	if err != nil {
		return book.Book{}, fmt.Errorf("build update: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, &book.NotFoundError{ID: id}
		}
		return book.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return b, nil
}

func (r *BookPG) Delete(ctx context.Context, id int64) error {
	query, args, err := r.q.delete(id)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &book.NotFoundError{ID: id}
	}
	return nil
}

// List runs the count and the page query inside one read-only transaction
// so both see the same snapshot.
func (r *BookPG) List(ctx context.Context, f book.Filter, p book.PageRequest) ([]book.Book, int, error) {
	p = p.Normalize()
	countSQL, countArgs, err := r.q.count(f)
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("begin list: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var total int
	if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if p.PastEnd(total) {
		return []book.Book{}, total, tx.Commit(ctx)
	}

	dataSQL, dataArgs, err := r.q.list(f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	rows, err := tx.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (book.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan books: %w", err)
	}
	return out, total, tx.Commit(ctx)
}

// Ping checks connectivity for readiness probes.
func (r *BookPG) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.ISBN, &b.Available)
	return b, err
}
