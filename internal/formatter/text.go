package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/inferschema/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.InferredSchema) error {
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.FormatTable(s, table)
	}
	return nil
}

// FormatTable writes one table block
func (f *TextFormatter) FormatTable(s *schema.InferredSchema, table schema.Table) {
	pkStr := ""
	if len(table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.ID, pkStr)

	for i, col := range table.Columns {
		var ct schema.ColumnType
		if i < len(table.Types) {
			ct = table.Types[i]
		}
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col, ct))
	}

	if refs := s.Joinables(table.ID); len(refs) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, fk := range refs {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s\n", fk.ForeignKeyColumn, fk.ParentTable, parentColumn(s, fk))
		}
	}
}

func formatColumn(col schema.ColumnInformation, ct schema.ColumnType) string {
	parts := []string{col.Name + ":", typeLabel(ct)}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}
