package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/tordrt/inferschema/internal/errs"
)

// SQLiteConn manages the connection to SQLite
type SQLiteConn struct {
	db *sql.DB
}

// NewSQLiteConn opens a SQLite database file and verifies the connection
func NewSQLiteConn(ctx context.Context, path string) (*SQLiteConn, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Attached databases and temp tables are per connection.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteConn{db: db}, nil
}

func openSQLite(ctx context.Context, connString string) (Connection, error) {
	return NewSQLiteConn(ctx, SQLitePath(connString))
}

// SQLitePath strips the sqlite:// scheme. file: URIs and bare paths are
// passed to the driver unchanged.
func SQLitePath(connString string) string {
	return strings.TrimPrefix(connString, "sqlite://")
}

// Backend implements Connection
func (c *SQLiteConn) Backend() Backend {
	return BackendSQLite
}

// Close closes the database connection
func (c *SQLiteConn) Close(_ context.Context) error {
	return c.db.Close()
}

// quoteIdent quotes a SQLite identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// schemaPrefix returns the attached-database qualifier for pragmas and
// sqlite_master, or "" for the default database.
func schemaPrefix(schemaName string) string {
	if schemaName == "" {
		return ""
	}
	return quoteIdent(schemaName) + "."
}

// sqliteCatalogError classifies a failed catalog query
func sqliteCatalogError(op, table string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && strings.Contains(sqliteErr.Error(), "no such table") {
		return errs.TableVanished(op, table, err)
	}
	return errs.CatalogQueryFailed(op, table, err)
}
