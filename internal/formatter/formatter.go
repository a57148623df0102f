// Package formatter renders an InferredSchema for humans.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formatter writes a schema somewhere
type Formatter interface {
	Format(s *schema.InferredSchema) error
}

// New returns the single-file formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatMarkdown, "":
		return NewMarkdownFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	default:
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown output format %q (want %s or %s)", format, FormatText, FormatMarkdown))
	}
}

// typeLabel renders a column type without its nullability, which the
// formatters print as a separate NOT NULL marker
func typeLabel(ct schema.ColumnType) string {
	ct.Nullable = false
	return ct.String()
}

// parentColumn names the referenced column, falling back to the parent's
// primary key when the backend did not report it
func parentColumn(s *schema.InferredSchema, fk schema.ForeignKeyConstraint) string {
	if fk.ParentColumn != "" {
		return fk.ParentColumn
	}
	if parent, ok := s.Table(fk.ParentTable); ok && len(parent.PrimaryKey) == 1 {
		return parent.PrimaryKey[0]
	}
	return "?"
}
