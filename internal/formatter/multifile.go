package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/inferschema/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(s *schema.InferredSchema) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		if err := f.writeTableFile(s, table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.ID, err)
		}
	}

	return nil
}

// TableFileName is the file a table is written to
func (f *MultiFileFormatter) TableFileName(id schema.TableIdentifier) string {
	return filepath.Join(f.OutputDir, id.String()+f.getFileExtension())
}

func (f *MultiFileFormatter) writeOverview(s *schema.InferredSchema) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		f.writeMarkdownOverview(file, s)
	} else {
		f.writeTextOverview(file, s)
	}
	return file.Close()
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, s *schema.InferredSchema) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "- **%s**", table.ID)
		if targets := parentNames(s, table.ID); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, s *schema.InferredSchema) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "%s", table.ID)
		if targets := parentNames(s, table.ID); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeTableFile(s *schema.InferredSchema, table schema.Table) error {
	file, err := os.Create(f.TableFileName(table.ID))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(file).FormatTable(s, table)
	} else {
		NewTextFormatter(file).FormatTable(s, table)
	}
	return file.Close()
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

// sortedTables returns the tables ordered by name without touching s
func sortedTables(s *schema.InferredSchema) []schema.Table {
	tables := make([]schema.Table, len(s.Tables))
	copy(tables, s.Tables)
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].ID.String() < tables[j].ID.String()
	})
	return tables
}

func parentNames(s *schema.InferredSchema, child schema.TableIdentifier) []string {
	var names []string
	for _, fk := range s.Joinables(child) {
		names = append(names, fk.ParentTable.String())
	}
	return names
}
