package db

import (
	"context"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// ListTables implements Connection. An empty schemaName means current_schema().
func (c *PostgresConn) ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
			AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.conn.Query(ctx, q, schemaName)
	if err != nil {
		return nil, pgCatalogError(opListTables, "", err)
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
		return nil, pgCatalogError(opListTables, "", err)
	}

	return tables, nil
}

// ListColumns implements Connection
func (c *PostgresConn) ListColumns(ctx context.Context, table schema.TableIdentifier) ([]schema.ColumnInformation, error) {
	// Enum columns report USER-DEFINED; arrays of enums report ARRAY with
	// an underscore-prefixed udt_name, so look the element type up.
	const q = `
		SELECT
			c.column_name,
			c.udt_name,
			c.is_nullable = 'YES' AS is_nullable,
			(c.data_type = 'USER-DEFINED' OR (c.data_type = 'ARRAY' AND EXISTS (
				SELECT 1 FROM pg_catalog.pg_type t
				WHERE t.typname = substr(c.udt_name, 2) AND t.typtype = 'e'
			))) AS user_defined
		FROM information_schema.columns c
		WHERE c.table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
			AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := c.conn.Query(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, pgCatalogError(opListColumns, table.String(), err)
	}
	defer rows.Close()

	var columns []schema.ColumnInformation
	for rows.Next() {
		var col schema.ColumnInformation
		if err := rows.Scan(&col.Name, &col.TypeName, &col.Nullable, &col.UserDefined); err != nil {
			return nil, errs.CatalogQueryFailed(opListColumns, table.String(), err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, pgCatalogError(opListColumns, table.String(), err)
	}

	// information_schema returns no rows rather than an error for a missing table
	if len(columns) == 0 {
		return nil, errs.TableVanished(opListColumns, table.String(), nil)
	}

	return columns, nil
}

// ListPrimaryKeys implements Connection
func (c *PostgresConn) ListPrimaryKeys(ctx context.Context, table schema.TableIdentifier) ([]string, error) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := c.conn.Query(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, pgCatalogError(opListPrimaryKeys, table.String(), err)
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
		return nil, pgCatalogError(opListPrimaryKeys, table.String(), err)
	}

	return pk, nil
}

// ListForeignKeys implements Connection. Parent tables outside the
// requested schema keep their own schema name.
func (c *PostgresConn) ListForeignKeys(ctx context.Context, schemaName string) ([]schema.ForeignKeyConstraint, error) {
	// Pairing on position_in_unique_constraint keeps the columns of
	// composite keys aligned with their referenced columns.
	const q = `
		SELECT
			rc.constraint_name,
			kcu.table_name   AS child_table,
			kcu.column_name  AS child_column,
			pk.table_schema  AS parent_schema,
			pk.table_name    AS parent_table,
			pk.column_name   AS parent_column,
			pk.table_schema = kcu.table_schema AS same_schema
		FROM information_schema.referential_constraints AS rc
		JOIN information_schema.key_column_usage AS kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage AS pk
			ON pk.constraint_schema = rc.unique_constraint_schema
			AND pk.constraint_name = rc.unique_constraint_name
			AND pk.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
		ORDER BY kcu.table_name, rc.constraint_name, kcu.ordinal_position
	`

	rows, err := c.conn.Query(ctx, q, schemaName)
	if err != nil {
		return nil, pgCatalogError(opListForeignKeys, "", err)
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
		return nil, pgCatalogError(opListForeignKeys, "", err)
	}

	return fks, nil
}

// MapColumnType implements Connection
func (c *PostgresConn) MapColumnType(col schema.ColumnInformation) (schema.ColumnType, error) {
	return MapPostgresType(col)
}
