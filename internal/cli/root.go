package cli

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/roach88/confql/internal/config"
	"github.com/roach88/confql/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"

	// Flags overriding the environment. Empty means "not set".
	DataRoot   string
	Schema     string
	IndexName  string
	Extensions []string
	EnvFile    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the confql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "confql",
		Short: "confql - query a hierarchical document tree",
		Long: `Resolve typed values from a tree of YAML, JSON and HCL documents.

A value can be stated at any level of the tree: in a parent directory's
index document, in a file named after the key, or in a subdirectory.
More specific documents override broader ones.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.DataRoot, "root", "r", "", "root of the document tree (env CONFQL_DATA_ROOT)")
	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "schema file or directory (env CONFQL_SCHEMA)")
	cmd.PersistentFlags().StringVar(&opts.IndexName, "index", "", "index document name (env CONFQL_INDEX_NAME)")
	cmd.PersistentFlags().StringSliceVar(&opts.Extensions, "ext", nil, "document extensions in lookup order (env CONFQL_EXTENSIONS)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load settings from this file instead of .env")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Config loads the environment and applies the flags on top.
func (o *RootOptions) Config() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.EnvFile != "" {
		cfg, err = config.LoadFile(o.EnvFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.DataRoot != "" {
		cfg.DataRoot = o.DataRoot
	}
	if o.Schema != "" {
		cfg.Schema = o.Schema
	}
	if o.IndexName != "" || len(o.Extensions) > 0 {
		layout := cfg.Layout
		if o.IndexName != "" {
			layout.IndexName = o.IndexName
		}
		if len(o.Extensions) > 0 {
			layout.Extensions = o.Extensions
		}
		cfg.Layout = layout.Normalize()
	}
	if o.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

// newLogger writes text logs to stderr at the configured level.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// newEngine builds an engine over the configured data root.
func newEngine(cmd *cobra.Command, cfg *config.Config) (*engine.Engine, *slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd, cfg)
	eng := engine.New(osfs.New(cfg.DataRoot),
		engine.WithLayout(cfg.Layout),
		engine.WithLogger(logger),
		engine.WithParallelism(cfg.Parallelism),
	)
	if err := eng.Validate(); err != nil {
		return nil, nil, fmt.Errorf("layout: %w", err)
	}
	return eng, logger, nil
}

// commandError prints err through the formatter and returns it as a
// command error (exit code 2).
func commandError(f *OutputFormatter, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// quietConfig is the logging setup for commands that do not read the
// environment: warnings only, or everything with --verbose.
func quietConfig(opts *RootOptions) *config.Config {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return &config.Config{LogLevel: level}
}
