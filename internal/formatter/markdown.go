package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/inferschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.InferredSchema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)
	if s.SchemaName != "" {
		_, _ = fmt.Fprintf(f.writer, "Schema: `%s`\n\n", s.SchemaName)
	}

	for _, table := range s.Tables {
		f.FormatTable(s, table)
	}
	return nil
}

// FormatTable writes one table section (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(s *schema.InferredSchema, table schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.ID)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for i, col := range table.Columns {
		var ct schema.ColumnType
		if i < len(table.Types) {
			ct = table.Types[i]
		}

		var markers []string
		if table.PrimaryKey.Contains(col.Name) {
			markers = append(markers, "PK")
		}
		if !col.Nullable {
			markers = append(markers, "NOT NULL")
		}

		if len(markers) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, typeLabel(ct), strings.Join(markers, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, typeLabel(ct))
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.PrimaryKey) > 1 {
		_, _ = fmt.Fprintf(f.writer, "Primary key: (%s)\n\n", strings.Join(table.PrimaryKey, ", "))
	}

	if refs := s.Joinables(table.ID); len(refs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, fk := range refs {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s\n", fk.ForeignKeyColumn, fk.ParentTable, parentColumn(s, fk))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if incoming := s.ReferencedBy(table.ID); len(incoming) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Referenced by")
		_, _ = fmt.Fprintln(f.writer)
		for _, fk := range incoming {
			_, _ = fmt.Fprintf(f.writer, "- %s.%s → %s\n", fk.ChildTable, fk.ForeignKeyColumn, parentColumn(s, fk))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}
