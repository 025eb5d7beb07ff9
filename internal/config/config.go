// Package config loads process settings from a .env file, the environment
// and defaults, in that order of precedence (environment wins over .env).
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/roach88/confql/internal/document"
)

// Environment variables read by Load.
const (
	EnvDataRoot    = "CONFQL_DATA_ROOT"
	EnvSchema      = "CONFQL_SCHEMA"
	EnvIndexName   = "CONFQL_INDEX_NAME"
	EnvExtensions  = "CONFQL_EXTENSIONS"
	EnvLogLevel    = "CONFQL_LOG_LEVEL"
	EnvParallelism = "CONFQL_PARALLELISM"
)

// DefaultSchemaFile is the schema looked up under the data root when none
// is configured.
const DefaultSchemaFile = "schema.cue"

// DefaultParallelism bounds concurrent field resolution.
const DefaultParallelism = 8

type Config struct {
	DataRoot    string
	Schema      string
	Layout      document.Layout
	LogLevel    slog.Level
	Parallelism int
}

// Load reads .env from the working directory (a missing file is ignored)
// and builds a Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// LoadFile is Load with an explicit env file, which must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Unset variables take defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	root := strings.TrimSpace(getenv(EnvDataRoot))
	if root == "" {
		root = "."
	}

	level, err := ParseLogLevel(getenv(EnvLogLevel))
	if err != nil {
		return nil, err
	}

	parallelism := DefaultParallelism
	if raw := strings.TrimSpace(getenv(EnvParallelism)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s: must be a positive integer, got %q", EnvParallelism, raw)
		}
		parallelism = n
	}

	layout := document.Layout{IndexName: getenv(EnvIndexName)}
	if raw := strings.TrimSpace(getenv(EnvExtensions)); raw != "" {
		layout.Extensions = strings.Split(raw, ",")
	}

	return &Config{
		DataRoot:    root,
		Schema:      strings.TrimSpace(getenv(EnvSchema)),
		Layout:      layout.Normalize(),
		LogLevel:    level,
		Parallelism: parallelism,
	}, nil
}

// SchemaPath returns the configured schema file, or schema.cue under the
// data root.
func (c *Config) SchemaPath() string {
	if c.Schema != "" {
		return c.Schema
	}
	return filepath.Join(c.DataRoot, DefaultSchemaFile)
}

// Validate checks that the data root is a directory.
func (c *Config) Validate() error {
	info, err := os.Stat(c.DataRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("data root not found: %s", c.DataRoot)
		}
		return fmt.Errorf("data root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data root is not a directory: %s", c.DataRoot)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error (any case) to a slog
// level. The empty string is info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%s: unknown log level %q", EnvLogLevel, s)
}
