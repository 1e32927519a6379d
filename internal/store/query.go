package store

import (
	"strings"

	"bookcatalog/internal/book"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"

	booksTable = "books"

	colID        = "id"
	colTitle     = "title"
	colAuthor    = "author"
	colYear      = "year"
	colISBN      = "isbn"
	colAvailable = "available"
)

var bookColumns = []any{colID, colTitle, colAuthor, colYear, colISBN, colAvailable}

// bookQueries renders parameterized book statements for one SQL dialect.
type bookQueries struct {
	dialect goqu.DialectWrapper
}

func newBookQueries(dialect string) bookQueries {
	return bookQueries{dialect: goqu.Dialect(dialect)}
}

// where translates f into predicates. An empty result selects every row.
func where(f book.Filter) []exp.Expression {
	var clauses []exp.Expression
	if f.Available != nil {
		clauses = append(clauses, goqu.C(colAvailable).Eq(*f.Available))
	}
	if f.Author != nil {
		clauses = append(clauses, goqu.L(`LOWER("author") LIKE ? ESCAPE '\'`, containsPattern(*f.Author)))
	}
	if f.Year != nil {
		clauses = append(clauses, goqu.C(colYear).Eq(*f.Year))
	}
	return clauses
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func (q bookQueries) count(f book.Filter) (string, []any, error) {
	return q.dialect.From(booksTable).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(where(f)...).
		ToSQL()
}

// list selects the window of p. Callers skip it when p.PastEnd(total), so the
// offset always fits the backend's integer range.
func (q bookQueries) list(f book.Filter, p book.PageRequest) (string, []any, error) {
	p = p.Normalize()
	return q.dialect.From(booksTable).
		Prepared(true).
		Select(bookColumns...).
		Where(where(f)...).
		Order(goqu.C(colID).Asc()).
		Limit(uint(p.Limit)).
		Offset(uint(p.Offset())).
		ToSQL()
}

func (q bookQueries) selectByID(id int64) (string, []any, error) {
	return q.dialect.From(booksTable).
		Prepared(true).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
}

func (q bookQueries) insert(in book.AddBook, returning bool) (string, []any, error) {
	ds := q.dialect.Insert(booksTable).
		Prepared(true).
		Rows(goqu.Record{
			colTitle:     in.Title,
			colAuthor:    in.Author,
			colYear:      in.Year,
			colISBN:      in.ISBN,
			colAvailable: true,
		})
	if returning {
		ds = ds.Returning(bookColumns...)
	}
	return ds.ToSQL()
}

// update sets only the fields present in patch. The patch must not be empty.
func (q bookQueries) update(id int64, patch book.UpdateBook, returning bool) (string, []any, error) {
	rec := goqu.Record{}
	if patch.Title != nil {
		rec[colTitle] = *patch.Title
	}
	if patch.Author != nil {
		rec[colAuthor] = *patch.Author
	}
	if patch.Year != nil {
		rec[colYear] = *patch.Year
	}
	if patch.ISBN != nil {
		rec[colISBN] = *patch.ISBN
	}
	if patch.Available != nil {
		rec[colAvailable] = *patch.Available
	}

	ds := q.dialect.Update(booksTable).
		Prepared(true).
		Set(rec).
		Where(goqu.C(colID).Eq(id))
	if returning {
		ds = ds.Returning(bookColumns...)
	}
	return ds.ToSQL()
}

func (q bookQueries) delete(id int64) (string, []any, error) {
	return q.dialect.Delete(booksTable).
		Prepared(true).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
}
