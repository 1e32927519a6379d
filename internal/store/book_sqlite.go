package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookcatalog/internal/book"
	"bookcatalog/internal/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// BookSQLite is a book.Store backed by a SQLite file. The pool is limited to
// one connection, which serializes writers and keeps ":memory:" databases
// alive for the lifetime of the store.
type BookSQLite struct {
	db *sqlx.DB
	q  bookQueries
}

// SQLiteDSN builds the go-sqlite3 DSN for a database file. MemoryDSN is
// passed through unchanged.
func SQLiteDSN(path string) string {
	if path == MemoryDSN {
		return path
	}
	return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// OpenSQLite opens path, applies the embedded migrations and returns the store.
func OpenSQLite(ctx context.Context, path string) (*BookSQLite, error) {
	db, err := sqlx.Open("sqlite3", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if err := migrations.Up(ctx, db.DB, goose.DialectSQLite3); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewBookSQLite(db), nil
}

// NewBookSQLite wraps an already migrated database.
func NewBookSQLite(db *sqlx.DB) *BookSQLite {
	return &BookSQLite{db: db, q: newBookQueries(dialectSQLite)}
}

func (r *BookSQLite) Close() error {
	return r.db.Close()
}

func (r *BookSQLite) Create(ctx context.Context, in book.AddBook) (book.Book, error) {
	query, args, err := r.q.insert(in, false)
	if err != nil {
		return book.Book{}, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return book.Book{}, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return book.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return book.Book{
		ID:        id,
		Title:     in.Title,
		Author:    in.Author,
		Year:      in.Year,
		ISBN:      in.ISBN,
		Available: true,
	}, nil
}

func (r *BookSQLite) Get(ctx context.Context, id int64) (book.Book, error) {
	return r.get(ctx, r.db, id)
}

// Update runs the UPDATE and the read-back in one transaction.
func (r *BookSQLite) Update(ctx context.Context, id int64, patch book.UpdateBook) (book.Book, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}
	query, args, err := r.q.update(id, patch, false)
	if err != nil {
		return book.Book{}, fmt.Errorf("build update: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return book.Book{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return book.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return book.Book{}, fmt.Errorf("update book %d: %w", id, err)
	} else if n == 0 {
		return book.Book{}, &book.NotFoundError{ID: id}
	}

	b, err := r.get(ctx, tx, id)
	if err != nil {
		return book.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return book.Book{}, fmt.Errorf("commit update: %w", err)
	}
	return b, nil
}

func (r *BookSQLite) Delete(ctx context.Context, id int64) error {
	query, args, err := r.q.delete(id)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if n == 0 {
		return &book.NotFoundError{ID: id}
	}
	return nil
}

func (r *BookSQLite) List(ctx context.Context, f book.Filter, p book.PageRequest) ([]book.Book, int, error) {
	p = p.Normalize()
	countSQL, countArgs, err := r.q.count(f)
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	out := []book.Book{}
	if p.PastEnd(total) {
		return out, total, tx.Commit()
	}

	dataSQL, dataArgs, err := r.q.list(f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	if err := tx.SelectContext(ctx, &out, dataSQL, dataArgs...); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return out, total, tx.Commit()
}

// Ping checks the database handle for readiness probes.
func (r *BookSQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *BookSQLite) get(ctx context.Context, q sqlx.QueryerContext, id int64) (book.Book, error) {
	query, args, err := r.q.selectByID(id)
	if err != nil {
		return book.Book{}, fmt.Errorf("build select: %w", err)
	}

	var b book.Book
	if err := sqlx.GetContext(ctx, q, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return book.Book{}, &book.NotFoundError{ID: id}
		}
		return book.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}
