package schema

import (
	"fmt"
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
)

// TableIdentifier names a table, optionally qualified by its schema
type TableIdentifier struct {
	Schema string
	Name   string
}

// NewTableIdentifier creates an identifier for name in schemaName.
// An empty schemaName means the backend's default schema.
func NewTableIdentifier(schemaName, name string) TableIdentifier {
	return TableIdentifier{Schema: schemaName, Name: name}
}

// ParseTableIdentifier parses "table" or "schema.table"
func ParseTableIdentifier(s string) (TableIdentifier, error) {
	schemaName, name, qualified := strings.Cut(s, ".")
	if !qualified {
		if s == "" {
			return TableIdentifier{}, errs.New(errs.ErrKindInvalidInput, "table name is empty")
		}
		return TableIdentifier{Name: s}, nil
	}
	if schemaName == "" || name == "" {
		return TableIdentifier{}, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("invalid table name %q (expected schema.table)", s))
	}
	return TableIdentifier{Schema: schemaName, Name: name}, nil
}

// String renders the identifier as "schema.name" or "name"
func (t TableIdentifier) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ColumnInformation is a column as reported by the catalog, before type mapping
type ColumnInformation struct {
	Name string
	// TypeName is the backend-raw type descriptor: udt_name for PostgreSQL,
	// column_type for MySQL, the declared type for SQLite.
	TypeName string
	Nullable bool
	// UserDefined marks PostgreSQL enum/domain types (and arrays of them).
	UserDefined bool
}

// Kind is the backend-agnostic logical type of a column
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindNumeric
	KindText
	KindBinary
	KindBool
	KindDate
	KindTime
	KindTimestamp
	KindTimestamptz
	KindUUID
	KindJSON
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindNumeric:
		return "Numeric"
	case KindText:
		return "Text"
	case KindBinary:
		return "Binary"
	case KindBool:
		return "Bool"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindTimestamp:
		return "Timestamp"
	case KindTimestamptz:
		return "Timestamptz"
	case KindUUID:
		return "Uuid"
	case KindJSON:
		return "Json"
	case KindCustom:
		return "Custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ColumnType is the normalized type of a column
type ColumnType struct {
	Kind Kind
	// Width is the bit width for KindInteger and KindFloat, zero otherwise.
	Width int
	// Name is the type name for KindCustom.
	Name     string
	Unsigned bool
	Nullable bool
	Array    bool
}

// String renders the type the way a binding generator would spell it,
// e.g. "Nullable<Array<Integer(32)>>".
func (c ColumnType) String() string {
	var s string
	switch c.Kind {
	case KindInteger, KindFloat:
		s = fmt.Sprintf("%s(%d)", c.Kind, c.Width)
		if c.Unsigned {
			s = "Unsigned<" + s + ">"
		}
	case KindCustom:
		s = fmt.Sprintf("Custom(%s)", c.Name)
	default:
		s = c.Kind.String()
	}
	if c.Array {
		s = "Array<" + s + ">"
	}
	if c.Nullable {
		s = "Nullable<" + s + ">"
	}
	return s
}

// PrimaryKeySet holds the primary key column names in key-ordinal order
type PrimaryKeySet []string

// Contains reports whether column is part of the key
func (p PrimaryKeySet) Contains(column string) bool {
	for _, c := range p {
		if c == column {
			return true
		}
	}
	return false
}

// ForeignKeyConstraint is a directed child -> parent relationship
type ForeignKeyConstraint struct {
	Name             string
	ChildTable       TableIdentifier
	ParentTable      TableIdentifier
	ForeignKeyColumn string
	// ParentColumn is the referenced column. Empty when the backend
	// only reports that the parent's primary key is referenced.
	ParentColumn string
}

// OrderedTables returns the two tables of the constraint in a direction
// independent order, so that a->b and b->a compare equal.
func (fk ForeignKeyConstraint) OrderedTables() [2]TableIdentifier {
	a, b := fk.ChildTable, fk.ParentTable
	if b.String() < a.String() {
		a, b = b, a
	}
	return [2]TableIdentifier{a, b}
}

// Table is the inferred description of one table
type Table struct {
	ID         TableIdentifier
	Columns    []ColumnInformation
	Types      []ColumnType // parallel to Columns
	PrimaryKey PrimaryKeySet
}

// InferredSchema is the result of one introspection run
type InferredSchema struct {
	SchemaName  string
	Tables      []Table
	ForeignKeys []ForeignKeyConstraint
}

// Table looks up a table by identifier
func (s *InferredSchema) Table(id TableIdentifier) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].ID == id {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// TableIDs returns the identifiers of all tables in listing order
func (s *InferredSchema) TableIDs() []TableIdentifier {
	ids := make([]TableIdentifier, len(s.Tables))
	for i, t := range s.Tables {
		ids[i] = t.ID
	}
	return ids
}

// Joinables returns the sanitized constraints whose child is the given table
func (s *InferredSchema) Joinables(child TableIdentifier) []ForeignKeyConstraint {
	var out []ForeignKeyConstraint
	for _, fk := range s.ForeignKeys {
		if fk.ChildTable == child {
			out = append(out, fk)
		}
	}
	return out
}

// ReferencedBy returns the sanitized constraints whose parent is the given table
func (s *InferredSchema) ReferencedBy(parent TableIdentifier) []ForeignKeyConstraint {
	var out []ForeignKeyConstraint
	for _, fk := range s.ForeignKeys {
		if fk.ParentTable == parent {
			out = append(out, fk)
		}
	}
	return out
}
