package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// sqliteColumn is one row of PRAGMA table_info
type sqliteColumn struct {
	name    string
	colType string
	notNull bool
	pk      int // 1-based position in the primary key, 0 if not part of it
}

// ListTables implements Connection. schemaName names an attached
// database; internal sqlite_* tables are excluded.
func (c *SQLiteConn) ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error) {
	query := fmt.Sprintf(`
		SELECT name
		FROM %ssqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%%' ESCAPE '\'
		ORDER BY name
	`, schemaPrefix(schemaName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		// sqlite_master always exists, so a miss means the attached database does not
		msg := err.Error()
		if schemaName != "" && (strings.Contains(msg, "unknown database") || strings.Contains(msg, "no such table")) {
			e := errs.EmptySchema(schemaName)
			e.Cause = err
			return nil, e
		}
		return nil, sqliteCatalogError(opListTables, "", err)
	}
	defer rows.Close()

	var tables []schema.TableIdentifier
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.CatalogQueryFailed(opListTables, "", err)
		}
		tables = append(tables, schema.NewTableIdentifier(schemaName, name))
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteCatalogError(opListTables, "", err)
	}

	return tables, nil
}

// tableInfo runs PRAGMA table_info for the table
func (c *SQLiteConn) tableInfo(ctx context.Context, op string, table schema.TableIdentifier) ([]sqliteColumn, error) {
	query := fmt.Sprintf("PRAGMA %stable_info(%s)", schemaPrefix(table.Schema), quoteIdent(table.Name))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, sqliteCatalogError(op, table.String(), err)
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var (
			cid          int
			col          sqliteColumn
			notNull      int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &col.name, &col.colType, &notNull, &defaultValue, &col.pk); err != nil {
			return nil, errs.CatalogQueryFailed(op, table.String(), err)
		}
		col.notNull = notNull != 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteCatalogError(op, table.String(), err)
	}

	// PRAGMA table_info yields no rows for a missing table
	if len(columns) == 0 {
		return nil, errs.TableVanished(op, table.String(), nil)
	}

	return columns, nil
}

// ListColumns implements Connection. Primary key columns are reported
// as not null.
func (c *SQLiteConn) ListColumns(ctx context.Context, table schema.TableIdentifier) ([]schema.ColumnInformation, error) {
	info, err := c.tableInfo(ctx, opListColumns, table)
	if err != nil {
		return nil, err
	}

	columns := make([]schema.ColumnInformation, 0, len(info))
	for _, col := range info {
		columns = append(columns, schema.ColumnInformation{
			Name:     col.name,
			TypeName: col.colType,
			Nullable: !col.notNull && col.pk == 0,
		})
	}
	return columns, nil
}

// ListPrimaryKeys implements Connection
func (c *SQLiteConn) ListPrimaryKeys(ctx context.Context, table schema.TableIdentifier) ([]string, error) {
	info, err := c.tableInfo(ctx, opListPrimaryKeys, table)
	if err != nil {
		return nil, err
	}

	var keyed []sqliteColumn
	for _, col := range info {
		if col.pk > 0 {
			keyed = append(keyed, col)
		}
	}
	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].pk < keyed[j].pk
	})

	pk := make([]string, len(keyed))
	for i, col := range keyed {
		pk[i] = col.name
	}
	return pk, nil
}

// ListForeignKeys implements Connection. SQLite only reports foreign keys
// per table, so every listed table is asked in turn.
func (c *SQLiteConn) ListForeignKeys(ctx context.Context, schemaName string) ([]schema.ForeignKeyConstraint, error) {
	tables, err := c.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	// SQLite identifiers are case-insensitive and REFERENCES keeps the
	// spelling of the DDL, so parents are mapped back to the stored name.
	names := make(map[string]string, len(tables))
	for _, table := range tables {
		names[strings.ToLower(table.Name)] = table.Name
	}

	var fks []schema.ForeignKeyConstraint
	for _, table := range tables {
		tableFKs, err := c.foreignKeysOf(ctx, table, names)
		if err != nil {
			return nil, err
		}
		fks = append(fks, tableFKs...)
	}
	return fks, nil
}

func (c *SQLiteConn) foreignKeysOf(ctx context.Context, table schema.TableIdentifier, names map[string]string) ([]schema.ForeignKeyConstraint, error) {
	query := fmt.Sprintf("PRAGMA %sforeign_key_list(%s)", schemaPrefix(table.Schema), quoteIdent(table.Name))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, sqliteCatalogError(opListForeignKeys, table.String(), err)
	}
	defer rows.Close()

	var fks []schema.ForeignKeyConstraint
	for rows.Next() {
		var (
			id, seq                     int
			parentTable, fromCol        string
			toCol                       sql.NullString
			onUpdate, onDelete, matchOn string
		)
		if err := rows.Scan(&id, &seq, &parentTable, &fromCol, &toCol, &onUpdate, &onDelete, &matchOn); err != nil {
			return nil, errs.CatalogQueryFailed(opListForeignKeys, table.String(), err)
		}
		if stored, ok := names[strings.ToLower(parentTable)]; ok {
			parentTable = stored
		}

		fks = append(fks, schema.ForeignKeyConstraint{
			Name:             fmt.Sprintf("%s_fk_%d", table.Name, id),
			ChildTable:       table,
			ParentTable:      schema.NewTableIdentifier(table.Schema, parentTable),
			ForeignKeyColumn: fromCol,
			// NULL means the parent's primary key
			ParentColumn: toCol.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteCatalogError(opListForeignKeys, table.String(), err)
	}

	return fks, nil
}

// MapColumnType implements Connection
func (c *SQLiteConn) MapColumnType(col schema.ColumnInformation) (schema.ColumnType, error) {
	return MapSQLiteType(col)
}
