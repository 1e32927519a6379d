// Package migrations embeds the SQL schema for every supported database and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dir returns the embedded migration directory for dialect.
func Dir(dialect goose.Dialect) (fs.FS, error) {
	switch dialect {
	case goose.DialectPostgres:
		return fs.Sub(files, "postgres")
	case goose.DialectSQLite3:
		return fs.Sub(files, "sqlite")
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}

// NewProvider returns a goose provider over the embedded migrations.
func NewProvider(db *sql.DB, dialect goose.Dialect) (*goose.Provider, error) {
	dir, err := Dir(dialect)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, dir)
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	p, err := NewProvider(db, dialect)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrations up: %w", err)
	}
	return nil
}
