package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tordrt/inferschema"
	"github.com/tordrt/inferschema/internal/config"
	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/formatter"
	"github.com/tordrt/inferschema/internal/logger"
	"github.com/tordrt/inferschema/internal/schema"
)

// cliFlags holds the values shared by every subcommand
type cliFlags struct {
	databaseURL string
	schemaName  string
	configPath  string
	format      string
	outputFile  string
	outputDir   string
	exclude     string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "inferschema",
		Short: "Infer a database schema for code generation",
		Long: `inferschema connects to a PostgreSQL, MySQL, or SQLite database and describes its tables,
column types, primary keys and the foreign keys that are safe to generate joins for.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.databaseURL, "database-url", "", "Database URL (postgres://, mysql://, sqlite:// or a file path)")
	pf.StringVarP(&flags.schemaName, "schema", "s", "", "Schema to inspect (default: the backend's default schema)")
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: nearest .inferschema.yaml)")
	pf.StringVar(&flags.exclude, "exclude", "", "Additional tables to exclude (comma-separated)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().StringVarP(&flags.format, "format", "f", formatter.FormatText, "Output format: text or markdown")
	rootCmd.Flags().StringVarP(&flags.outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&flags.outputDir, "output-dir", "d", "", "Output directory for multi-file output")

	rootCmd.AddCommand(newTableCmd(flags), newTablesCmd(flags), newForeignKeysCmd(flags))
	return rootCmd
}

func newTableCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table NAME",
		Short: "Describe a single table (NAME or SCHEMA.NAME)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, opts, err := resolveOptions(cmd, flags)
			if err != nil {
				return err
			}

			table, err := inferschema.InferTable(cmd.Context(), url, args[0], opts)
			if err != nil {
				return err
			}

			f, err := formatter.New(flags.format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return f.Format(&schema.InferredSchema{
				SchemaName: opts.SchemaName,
				Tables:     []schema.Table{*table},
			})
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatter.FormatText, "Output format: text or markdown")
	return cmd
}

func newTablesCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables that would be inspected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, opts, err := resolveOptions(cmd, flags)
			if err != nil {
				return err
			}

			ids, err := inferschema.LoadTableNames(cmd.Context(), url, opts)
			if err != nil {
				return err
			}
			for _, id := range ids {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newForeignKeysCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "foreign-keys",
		Short: "List every declared foreign key, before sanitization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, opts, err := resolveOptions(cmd, flags)
			if err != nil {
				return err
			}

			fks, err := inferschema.LoadForeignKeys(cmd.Context(), url, opts)
			if err != nil {
				return err
			}
			for _, fk := range fks {
				parentCol := fk.ParentColumn
				if parentCol == "" {
					parentCol = "<primary key>"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s.%s → %s.%s (%s)\n",
					fk.ChildTable, fk.ForeignKeyColumn, fk.ParentTable, parentCol, fk.Name)
			}
			return nil
		},
	}
}

func runInfer(cmd *cobra.Command, flags *cliFlags) error {
	if flags.outputDir != "" && flags.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	url, opts, err := resolveOptions(cmd, flags)
	if err != nil {
		return err
	}

	s, err := inferschema.Infer(cmd.Context(), url, opts)
	if err != nil {
		return err
	}

	outOpts := &inferschema.OutputOptions{
		Writer:    cmd.OutOrStdout(),
		OutputDir: flags.outputDir,
		Format:    flags.format,
	}

	if flags.outputFile != "" {
		f, err := os.Create(flags.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to close output file: %v\n", err)
			}
		}()
		outOpts.Writer = f
	}

	if err := inferschema.FormatSchema(s, outOpts); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// resolveOptions merges the config file with the command-line flags.
// Flags win over the file.
func resolveOptions(cmd *cobra.Command, flags *cliFlags) (string, *inferschema.Options, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return "", nil, err
	}

	url := cfg.DatabaseURL
	if flags.databaseURL != "" {
		url = flags.databaseURL
	}
	if url == "" {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "--database-url is required (or database_url in the config file)")
	}

	schemaName := cfg.Schema
	if flags.schemaName != "" {
		schemaName = flags.schemaName
	}

	policy := cfg.Policy
	policy.ExcludeTables = append(append([]string(nil), policy.ExcludeTables...), parseTableList(flags.exclude)...)

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log := newLogger(cmd.ErrOrStderr(), level, cfg.Log.Format)

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	// inferschema picks the logger up from the command context
	cmd.SetContext(log.WithContext(cmd.Context()))

	return url, &inferschema.Options{
		SchemaName: schemaName,
		Policy:     &policy,
	}, nil
}

// loadConfig reads path, or the nearest config file when path is empty.
// A missing config file is not an error.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFile(path)
	}

	cfg, err := config.LoadConfig(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// newLogger logs to w in console format unless format says otherwise.
// Colors are only used when w is a terminal.
func newLogger(w io.Writer, level, format string) *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = w
	cfg.Format = "console"
	if format != "" {
		cfg.Format = format
	}
	if level != "" {
		cfg.Level = level
	}
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		cfg.NoColor = true
	}
	return logger.New(cfg)
}

// parseTableList splits a comma-separated table list
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}

	tables := strings.Split(s, ",")
	for i, t := range tables {
		tables[i] = strings.TrimSpace(t)
	}
	return tables
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
