// Package config loads the .inferschema.yaml file that carries the
// introspection policy and logging settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/inferschema/internal/errs"
)

// Unknown-table handling for foreign keys whose other side was not listed.
const (
	UnknownTablesSilent = "silent"
	UnknownTablesWarn   = "warn"
)

// DefaultMaxPrimaryKeyColumns is the widest composite key generated code supports.
const DefaultMaxPrimaryKeyColumns = 5

// ErrConfigNotFound is returned by FindConfig when no config file exists
// in the directory or any of its parents.
var ErrConfigNotFound = errors.New("no .inferschema.yaml found")

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".inferschema.yaml", ".inferschema.yml", "inferschema.yaml", "inferschema.yml"}

// Config represents the .inferschema.yaml configuration file.
type Config struct {
	// DatabaseURL is used when no URL is passed explicitly.
	DatabaseURL string `yaml:"database_url,omitempty"`

	// Schema restricts introspection to one schema. Empty means the
	// backend's default schema.
	Schema string `yaml:"schema,omitempty"`

	Log    LogConfig `yaml:"log,omitempty"`
	Policy Policy    `yaml:"policy,omitempty"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Policy holds the limits downstream code generation depends on.
type Policy struct {
	MaxPrimaryKeyColumns int              `yaml:"max_primary_key_columns,omitempty"`
	ExcludeTables        []string         `yaml:"exclude_tables,omitempty"`
	ForeignKeys          ForeignKeyPolicy `yaml:"foreign_keys,omitempty"`
}

// ForeignKeyPolicy controls which relationships survive sanitization.
type ForeignKeyPolicy struct {
	DropSelfReferential     bool   `yaml:"drop_self_referential"`
	DropAmbiguous           bool   `yaml:"drop_ambiguous"`
	RequireParentPrimaryKey bool   `yaml:"require_parent_primary_key"`
	UnknownTables           string `yaml:"unknown_tables,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "console"},
		Policy: DefaultPolicy(),
	}
}

// DefaultPolicy returns the policy matching what binding generators support.
func DefaultPolicy() Policy {
	return Policy{
		MaxPrimaryKeyColumns: DefaultMaxPrimaryKeyColumns,
		ExcludeTables:        []string{"__diesel_schema_migrations"},
		ForeignKeys: ForeignKeyPolicy{
			DropSelfReferential:     true,
			DropAmbiguous:           true,
			RequireParentPrimaryKey: true,
			UnknownTables:           UnknownTablesSilent,
		},
	}
}

// Validate checks the policy values.
func (c *Config) Validate() error {
	return c.Policy.Validate()
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.MaxPrimaryKeyColumns < 1 {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("max_primary_key_columns must be at least 1, got %d", p.MaxPrimaryKeyColumns))
	}
	switch p.ForeignKeys.UnknownTables {
	case UnknownTablesSilent, UnknownTablesWarn:
	default:
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown_tables must be %q or %q, got %q",
				UnknownTablesSilent, UnknownTablesWarn, p.ForeignKeys.UnknownTables))
	}
	return nil
}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path. Fields missing
// from the file keep their Default values.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("parse %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
