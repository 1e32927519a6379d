package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns one constructor per available book.Store. PostgreSQL is
// included only when TEST_DB_DSN points at a reachable server.
func backends(t *testing.T) map[string]func(t *testing.T) book.Store {
	t.Helper()
	out := map[string]func(t *testing.T) book.Store{
		"memory": func(t *testing.T) book.Store { return NewMemory() },
		"sqlite": func(t *testing.T) book.Store {
			s, err := OpenSQLite(context.Background(), MemoryDSN)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		out["postgres"] = func(t *testing.T) book.Store {
			return setupPGStore(t, dsn)
		}
	}
	return out
}

func setupPGStore(t *testing.T, dsn string) *BookPG {
	t.Helper()
	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to test database: %v", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		t.Skipf("Skipping test: cannot ping test database: %v", err)
	}
	t.Cleanup(db.Close)

	sqlDB := stdlib.OpenDBFromPool(db)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrations.Up(ctx, sqlDB, goose.DialectPostgres))
	_, err = db.Exec(ctx, "TRUNCATE books RESTART IDENTITY")
	require.NoError(t, err)

	return NewBookPG(db, 5*time.Second)
}

func forEachBackend(t *testing.T, fn func(t *testing.T, svc *book.Service)) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, book.NewService(open(t)))
		})
	}
}

func sampleBook(n int) book.AddBook {
	return book.AddBook{
		Title:  fmt.Sprintf("Book %d", n),
		Author: "Author Name",
		Year:   2020,
		ISBN:   "9781593278281",
	}
}

func seed(t *testing.T, svc *book.Service, in ...book.AddBook) []book.Book {
	t.Helper()
	out := make([]book.Book, 0, len(in))
	for _, b := range in {
		created, err := svc.Create(context.Background(), b)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func seedN(t *testing.T, svc *book.Service, n int) []book.Book {
	t.Helper()
	in := make([]book.AddBook, n)
	for i := range in {
		in[i] = sampleBook(i + 1)
	}
	return seed(t, svc, in...)
}

func ptr[T any](v T) *T { return &v }

func TestStore_Create(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()

		created, err := svc.Create(ctx, book.AddBook{
			Title:  "The Rust Programming Language",
			Author: "Steve Klabnik",
			Year:   2018,
			ISBN:   "978-1593278281",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.True(t, created.Available)
		assert.Equal(t, "978-1593278281", created.ISBN)

		fetched, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
	})
}

func TestStore_CreateInvalidDoesNotPersist(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		seedN(t, svc, 2)

		in := sampleBook(3)
		in.Title = ""
		_, err := svc.Create(ctx, in)

		var verr *book.ValidationError
		require.ErrorAs(t, err, &verr)

		page, err := svc.List(ctx, book.Filter{}, book.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Pagination.TotalItems)
	})
}

func TestStore_IDsNeverReused(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 3)

		require.NoError(t, svc.Delete(ctx, books[2].ID))
		require.NoError(t, svc.Delete(ctx, books[1].ID))

		next, err := svc.Create(ctx, sampleBook(4))
		require.NoError(t, err)
		assert.Equal(t, int64(4), next.ID)
	})
}

func TestStore_GetIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 1)

		first, err := svc.Get(ctx, books[0].ID)
		require.NoError(t, err)
		second, err := svc.Get(ctx, books[0].ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestStore_GetNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		_, err := svc.Get(context.Background(), 99)
		assert.ErrorIs(t, err, book.ErrNotFound)
		assert.Contains(t, err.Error(), "99")
	})
}

func TestStore_UpdatePartial(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 1)
		before := books[0]

		updated, err := svc.Update(ctx, before.ID, book.UpdateBook{Available: ptr(false)})
		require.NoError(t, err)
		assert.False(t, updated.Available)
		assert.Equal(t, before.ID, updated.ID)
		assert.Equal(t, before.Title, updated.Title)
		assert.Equal(t, before.Author, updated.Author)
		assert.Equal(t, before.Year, updated.Year)
		assert.Equal(t, before.ISBN, updated.ISBN)

		updated, err = svc.Update(ctx, before.ID, book.UpdateBook{Title: ptr("Updated Title")})
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.False(t, updated.Available)

		fetched, err := svc.Get(ctx, before.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, fetched)
	})
}

func TestStore_UpdateEmptyPatchReturnsStored(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 1)

		got, err := svc.Update(ctx, books[0].ID, book.UpdateBook{})
		require.NoError(t, err)
		assert.Equal(t, books[0], got)

		_, err = svc.Update(ctx, 42, book.UpdateBook{})
		assert.ErrorIs(t, err, book.ErrNotFound)
	})
}

// Update does not re-run create-time validation.
func TestStore_UpdateSkipsValidation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 1)

		updated, err := svc.Update(ctx, books[0].ID, book.UpdateBook{
			Title: ptr(""),
			Year:  ptr(3000),
			ISBN:  ptr("bad-isbn"),
		})
		require.NoError(t, err)
		assert.Equal(t, "", updated.Title)
		assert.Equal(t, 3000, updated.Year)
		assert.Equal(t, "bad-isbn", updated.ISBN)
	})
}

func TestStore_UpdateNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		_, err := svc.Update(context.Background(), 99, book.UpdateBook{Title: ptr("x")})
		var nf *book.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, int64(99), nf.ID)
	})
}

func TestStore_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 3)

		require.NoError(t, svc.Delete(ctx, books[1].ID))

		_, err := svc.Get(ctx, books[1].ID)
		assert.ErrorIs(t, err, book.ErrNotFound)

		page, err := svc.List(ctx, book.Filter{}, book.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, books[0].ID, page.Data[0].ID)
		assert.Equal(t, books[2].ID, page.Data[1].ID)

		err = svc.Delete(ctx, books[1].ID)
		assert.ErrorIs(t, err, book.ErrNotFound)
	})
}

func TestStore_DeleteNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		err := svc.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, book.ErrNotFound)
		assert.Contains(t, err.Error(), "99")
	})
}

func TestStore_ListEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		page, err := svc.List(context.Background(), book.Filter{}, book.PageRequest{})
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, book.Pagination{Page: 1, Limit: 10, TotalItems: 0, TotalPages: 0}, page.Pagination)
	})
}

func TestStore_ListPagination(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seedN(t, svc, 15)

		page, err := svc.List(ctx, book.Filter{}, book.PageRequest{Page: 2, Limit: 5})
		require.NoError(t, err)
		require.Len(t, page.Data, 5)
		assert.Equal(t, books[5].ID, page.Data[0].ID)
		assert.Equal(t, book.Pagination{Page: 2, Limit: 5, TotalItems: 15, TotalPages: 3}, page.Pagination)

		beyond, err := svc.List(ctx, book.Filter{}, book.PageRequest{Page: 99, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, beyond.Data)
		assert.Equal(t, 15, beyond.Pagination.TotalItems)
		assert.Equal(t, 2, beyond.Pagination.TotalPages)
	})
}

func TestStore_ListHugePageIsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		seedN(t, svc, 3)

		for _, p := range []book.PageRequest{
			{Page: math.MaxInt, Limit: 10},
			{Page: 1e18, Limit: 10},
			{Page: math.MaxInt, Limit: math.MaxInt},
		} {
			page, err := svc.List(ctx, book.Filter{}, p)
			require.NoError(t, err)
			assert.NotNil(t, page.Data)
			assert.Empty(t, page.Data)
			assert.Equal(t, 3, page.Pagination.TotalItems)
			assert.Equal(t, p.Page, page.Pagination.Page)
		}
	})
}

func TestStore_ListPagesPartitionResults(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		seedN(t, svc, 12)

		seen := map[int64]bool{}
		sum := 0
		for p := 1; p <= 3; p++ {
			page, err := svc.List(ctx, book.Filter{}, book.PageRequest{Page: p, Limit: 5})
			require.NoError(t, err)
			assert.Equal(t, 3, page.Pagination.TotalPages)
			for _, b := range page.Data {
				assert.False(t, seen[b.ID], "id %d returned twice", b.ID)
				seen[b.ID] = true
			}
			sum += len(page.Data)
		}
		assert.Equal(t, 12, sum)
	})
}

func TestStore_ListLimitClamped(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		seedN(t, svc, 105)

		page, err := svc.List(ctx, book.Filter{}, book.PageRequest{Page: 1, Limit: 500})
		require.NoError(t, err)
		assert.Len(t, page.Data, 100)
		assert.Equal(t, 100, page.Pagination.Limit)
		assert.Equal(t, 2, page.Pagination.TotalPages)

		page, err = svc.List(ctx, book.Filter{}, book.PageRequest{Page: -3, Limit: 0})
		require.NoError(t, err)
		assert.Len(t, page.Data, 10)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 10, page.Pagination.Limit)
	})
}

func TestStore_ListFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		books := seed(t, svc,
			book.AddBook{Title: "The Hobbit", Author: "J.R.R. Tolkien", Year: 1937, ISBN: "9780547928227"},
			book.AddBook{Title: "1984", Author: "George Orwell", Year: 1949, ISBN: "9780451524935"},
			book.AddBook{Title: "Middlemarch", Author: "George Eliot", Year: 1871, ISBN: "9780141439549"},
			book.AddBook{Title: "Percent", Author: "Ann 100% Real_Name", Year: 2010, ISBN: "9780000000001"},
		)
		_, err := svc.Update(ctx, books[1].ID, book.UpdateBook{Available: ptr(false)})
		require.NoError(t, err)

		ids := func(f book.Filter) []int64 {
			page, err := svc.List(ctx, f, book.PageRequest{})
			require.NoError(t, err)
			out := []int64{}
			for _, b := range page.Data {
				out = append(out, b.ID)
			}
			assert.Equal(t, len(out), page.Pagination.TotalItems)
			return out
		}

		assert.Equal(t, []int64{books[1].ID, books[2].ID}, ids(book.Filter{Author: ptr("george")}))
		assert.Equal(t, []int64{books[0].ID}, ids(book.Filter{Author: ptr("TOLK")}))
		assert.Equal(t, []int64{books[1].ID}, ids(book.Filter{Available: ptr(false)}))
		assert.Equal(t, []int64{books[0].ID, books[2].ID, books[3].ID}, ids(book.Filter{Available: ptr(true)}))
		assert.Equal(t, []int64{books[3].ID}, ids(book.Filter{Year: ptr(2010)}))
		assert.Equal(t, []int64{books[2].ID}, ids(book.Filter{Author: ptr("george"), Available: ptr(true)}))
		assert.Equal(t, []int64{}, ids(book.Filter{Author: ptr("george"), Year: ptr(2010)}))

		// LIKE metacharacters match literally.
		assert.Equal(t, []int64{books[3].ID}, ids(book.Filter{Author: ptr("100%")}))
		assert.Equal(t, []int64{books[3].ID}, ids(book.Filter{Author: ptr("l_n")}))
		assert.Equal(t, []int64{}, ids(book.Filter{Author: ptr("r_r")}))
	})
}

func TestStore_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *book.Service) {
		ctx := context.Background()
		const n = 20

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			ids  = map[int64]bool{}
			errs []error
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b, err := svc.Create(ctx, sampleBook(i))
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				ids[b.ID] = true
			}(i)
		}
		wg.Wait()

		require.Empty(t, errs)
		assert.Len(t, ids, n)
	})
}

func TestStore_CanceledContext(t *testing.T) {
	s, err := OpenSQLite(context.Background(), MemoryDSN)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Get(ctx, 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, book.ErrNotFound))
}
