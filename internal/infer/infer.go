// Package infer assembles an InferredSchema from a backend catalog.
//
// The run is sequential and fail-fast: the first table or constraint that
// cannot be described aborts the whole run and no partial schema is
// returned.
package infer

import (
	"context"
	"errors"

	"github.com/tordrt/inferschema/internal/config"
	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/logger"
	"github.com/tordrt/inferschema/internal/schema"
)

// Catalog is the set of catalog operations inference needs.
// db.Connection satisfies it.
type Catalog interface {
	ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error)
	ListColumns(ctx context.Context, table schema.TableIdentifier) ([]schema.ColumnInformation, error)
	ListPrimaryKeys(ctx context.Context, table schema.TableIdentifier) ([]string, error)
	ListForeignKeys(ctx context.Context, schemaName string) ([]schema.ForeignKeyConstraint, error)
	MapColumnType(col schema.ColumnInformation) (schema.ColumnType, error)
}

// Inferrer builds schema descriptions from a Catalog
type Inferrer struct {
	catalog Catalog
	policy  config.Policy
	log     *logger.Logger
}

// New creates an Inferrer. A nil log discards output.
func New(catalog Catalog, policy config.Policy, log *logger.Logger) *Inferrer {
	if log == nil {
		log = logger.Nop()
	}
	return &Inferrer{catalog: catalog, policy: policy, log: log}
}

// Infer describes every table of schemaName together with the foreign
// keys that are safe to generate joins for. An empty schemaName means the
// backend's default schema.
func (i *Inferrer) Infer(ctx context.Context, schemaName string) (*schema.InferredSchema, error) {
	ids, err := i.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	result := &schema.InferredSchema{
		SchemaName: schemaName,
		Tables:     make([]schema.Table, 0, len(ids)),
	}
	for _, id := range ids {
		table, err := i.InferTable(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, *table)
	}

	raw, err := i.catalog.ListForeignKeys(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	result.ForeignKeys = NewSanitizer(i.policy.ForeignKeys, i.log).Sanitize(raw, result.Tables)

	i.log.With().Str("schema", schemaName).Int("tables", len(result.Tables)).
		Int("foreign_keys", len(result.ForeignKeys)).Logger().Info("schema inferred")

	return result, nil
}

// ListTables lists the tables of schemaName minus the excluded ones.
// An explicitly named schema without tables is reported as EmptySchema,
// which usually means the name is misspelled.
func (i *Inferrer) ListTables(ctx context.Context, schemaName string) ([]schema.TableIdentifier, error) {
	ids, err := i.catalog.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 && schemaName != "" {
		return nil, errs.EmptySchema(schemaName)
	}

	if len(i.policy.ExcludeTables) == 0 {
		return ids, nil
	}

	excluded := make(map[string]bool, len(i.policy.ExcludeTables))
	for _, name := range i.policy.ExcludeTables {
		excluded[name] = true
	}

	filtered := make([]schema.TableIdentifier, 0, len(ids))
	for _, id := range ids {
		if excluded[id.Name] || excluded[id.String()] {
			i.log.Debugf("excluding table %s", id)
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered, nil
}

// InferTable describes a single table: its columns, their logical types
// and its validated primary key.
func (i *Inferrer) InferTable(ctx context.Context, id schema.TableIdentifier) (*schema.Table, error) {
	log := i.log.With().Str("table", id.String()).Logger()

	columns, err := i.catalog.ListColumns(ctx, id)
	if err != nil {
		return nil, err
	}

	types := make([]schema.ColumnType, len(columns))
	for n, col := range columns {
		ct, err := i.catalog.MapColumnType(col)
		if err != nil {
			return nil, annotateColumn(err, id, col.Name)
		}
		types[n] = ct
	}

	pk, err := i.PrimaryKey(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Debugf("inferred %d columns, primary key %v", len(columns), []string(pk))

	return &schema.Table{
		ID:         id,
		Columns:    columns,
		Types:      types,
		PrimaryKey: pk,
	}, nil
}

// PrimaryKey loads and validates the primary key of a table
func (i *Inferrer) PrimaryKey(ctx context.Context, id schema.TableIdentifier) (schema.PrimaryKeySet, error) {
	keys, err := i.catalog.ListPrimaryKeys(ctx, id)
	if err != nil {
		return nil, err
	}
	return ValidatePrimaryKey(id, keys, i.policy.MaxPrimaryKeyColumns)
}

// ValidatePrimaryKey checks that a table has between 1 and maxColumns
// key columns. Keys are never truncated.
func ValidatePrimaryKey(id schema.TableIdentifier, keys []string, maxColumns int) (schema.PrimaryKeySet, error) {
	switch {
	case len(keys) == 0:
		return nil, errs.MissingPrimaryKey(id.String())
	case len(keys) > maxColumns:
		return nil, errs.PrimaryKeyTooWide(id.String(), len(keys), maxColumns)
	}
	return schema.PrimaryKeySet(keys), nil
}

// annotateColumn adds the table and column to a type mapping error
func annotateColumn(err error, id schema.TableIdentifier, column string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Table == "" {
			e.Table = id.String()
		}
		if e.Column == "" {
			e.Column = column
		}
	}
	return err
}
