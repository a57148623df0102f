package db

import (
	"context"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// ListTables implements Connection. An empty schemaName means DATABASE().
func (c *MySQLConn) ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
			AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, mysqlCatalogError(opListTables, "", err)
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
		return nil, mysqlCatalogError(opListTables, "", err)
	}

	return tables, nil
}

// ListColumns implements Connection. The type descriptor is column_type,
// which keeps display width and the unsigned flag, e.g. "int(10) unsigned".
func (c *MySQLConn) ListColumns(ctx context.Context, table schema.TableIdentifier) ([]schema.ColumnInformation, error) {
	const q = `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable = 'YES' AS is_nullable
		FROM information_schema.columns c
		WHERE c.table_schema = COALESCE(NULLIF(?, ''), DATABASE())
			AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := c.db.QueryContext(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, mysqlCatalogError(opListColumns, table.String(), err)
	}
	defer rows.Close()

	var columns []schema.ColumnInformation
	for rows.Next() {
		var col schema.ColumnInformation
		if err := rows.Scan(&col.Name, &col.TypeName, &col.Nullable); err != nil {
			return nil, errs.CatalogQueryFailed(opListColumns, table.String(), err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mysqlCatalogError(opListColumns, table.String(), err)
	}

	if len(columns) == 0 {
		return nil, errs.TableVanished(opListColumns, table.String(), nil)
	}

	return columns, nil
}

// ListPrimaryKeys implements Connection
func (c *MySQLConn) ListPrimaryKeys(ctx context.Context, table schema.TableIdentifier) ([]string, error) {
	const q = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := c.db.QueryContext(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, mysqlCatalogError(opListPrimaryKeys, table.String(), err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, errs.CatalogQueryFailed(opListPrimaryKeys, table.String(), err)
		}
		pk = append(pk, colName)
	}
	if err := rows.Err(); err != nil {
		return nil, mysqlCatalogError(opListPrimaryKeys, table.String(), err)
	}

	return pk, nil
}

// ListForeignKeys implements Connection
func (c *MySQLConn) ListForeignKeys(ctx context.Context, schemaName string) ([]schema.ForeignKeyConstraint, error) {
	const q = `
		SELECT
			kcu.constraint_name,
			kcu.table_name,
			kcu.column_name,
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			kcu.referenced_table_schema = kcu.table_schema AS same_schema
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = COALESCE(NULLIF(?, ''), DATABASE())
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := c.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, mysqlCatalogError(opListForeignKeys, "", err)
	}
	defer rows.Close()

	var fks []schema.ForeignKeyConstraint
	for rows.Next() {
		var (
			fk                       schema.ForeignKeyConstraint
			childTable, parentSchema string
			parentTable              string
			sameSchema               bool
		)
		if err := rows.Scan(&fk.Name, &childTable, &fk.ForeignKeyColumn,
			&parentSchema, &parentTable, &fk.ParentColumn, &sameSchema); err != nil {
			return nil, errs.CatalogQueryFailed(opListForeignKeys, "", err)
		}

		fk.ChildTable = schema.NewTableIdentifier(schemaName, childTable)
		if sameSchema {
			fk.ParentTable = schema.NewTableIdentifier(schemaName, parentTable)
		} else {
			fk.ParentTable = schema.NewTableIdentifier(parentSchema, parentTable)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, mysqlCatalogError(opListForeignKeys, "", err)
	}

	return fks, nil
}

// MapColumnType implements Connection
func (c *MySQLConn) MapColumnType(col schema.ColumnInformation) (schema.ColumnType, error) {
	return MapMySQLType(col)
}
