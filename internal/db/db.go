// Package db connects to a database backend and reads table, column and
// key metadata from its system catalog.
//
// Each backend implements Connection against its own catalog dialect:
// information_schema for PostgreSQL and MySQL, sqlite_master and PRAGMAs
// for SQLite. Resolve picks the backend from the connection string.
package db

import (
	"context"

	"github.com/tordrt/inferschema/internal/schema"
)

// Backend identifies the database engine
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendSQLite   Backend = "sqlite"
)

// Catalog operation names, reported in CatalogQueryFailed errors
const (
	opListTables      = "list_tables"
	opListColumns     = "list_columns"
	opListPrimaryKeys = "list_primary_keys"
	opListForeignKeys = "list_foreign_keys"
)

// Connection is a live connection to one backend together with the
// catalog queries and type mapping for that backend.
//
// An empty schemaName selects the backend's default schema. Tables in the
// default schema are identified without a schema.
type Connection interface {
	Backend() Backend

	// ListTables returns the user tables of the schema, excluding
	// system tables, in a stable order.
	ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error)

	// ListColumns returns the table's columns by ordinal position.
	ListColumns(ctx context.Context, table schema.TableIdentifier) ([]schema.ColumnInformation, error)

	// ListPrimaryKeys returns the primary key columns in key order.
	ListPrimaryKeys(ctx context.Context, table schema.TableIdentifier) ([]string, error)

	// ListForeignKeys returns every foreign key declared in the schema.
	ListForeignKeys(ctx context.Context, schemaName string) ([]schema.ForeignKeyConstraint, error)

	// MapColumnType maps a raw column to its logical type. It never
	// touches the database.
	MapColumnType(col schema.ColumnInformation) (schema.ColumnType, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}
