package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/confql/internal/config"
	"github.com/roach88/confql/internal/engine"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Type string // type reference overriding the schema
}

// QueryEntry is one resolved address in command output.
type QueryEntry struct {
	Address string    `json:"address" yaml:"address"`
	QueryID string    `json:"query_id" yaml:"query_id"`
	Value   any       `json:"value" yaml:"value"`
	Error   *CLIError `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <address>",
		Short: "Resolve one address",
		Long: `Resolve a dotted address (things.widget.size) against the document tree.

The shape comes from --type when given, otherwise from the field the
schema declares at the address.

Exit codes:
  0 - Resolved
  1 - Resolution failed (data not found, type mismatch, incompatible merge)
  2 - Command error (bad address, missing schema, invalid configuration)

Examples:
  confql resolve things
  confql resolve things.widget.size --type Float!
  confql resolve settings --root ./data --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "type reference, e.g. \"[Thing!]!\"")

	return cmd
}

func runResolve(ctx context.Context, opts *ResolveOptions, rawAddress string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.Config()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	address, err := engine.ParseAddress(rawAddress)
	if err != nil {
		return commandError(formatter, ErrCodeAddress, err)
	}

	schema, err := configuredSchema(cfg, opts.Type == "")
	if err != nil {
		return commandError(formatter, loadErrorCode(err), err)
	}
	s, err := shapeFor(schema, opts.Type, address)
	if err != nil {
		return commandError(formatter, ErrCodeAddress, err)
	}

	eng, logger, err := newEngine(cmd, cfg)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	result := eng.ResolveFields(ctxOrBackground(ctx), []engine.Request{{Address: address, Shape: s}})[0]
	entry := entryFor(rawAddress, result)
	if result.Err != nil {
		logger.Info("resolve failed", "query_id", result.QueryID, "address", rawAddress, "error", result.Err)
		_ = formatter.Respond(CLIResponse{Status: "error", Error: entry.Error, QueryID: result.QueryID})
		return WrapExitError(ExitFailure, entry.Error.Code, result.Err)
	}

	logger.Info("resolved", "query_id", result.QueryID, "address", rawAddress, "shape", s.String())
	return formatter.Respond(CLIResponse{Status: "ok", Data: entry.Value, QueryID: result.QueryID})
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// configuredSchema loads the configured schema. When the schema is not
// required and none was configured explicitly, a missing default file
// yields an empty schema, which still resolves scalar type references.
func configuredSchema(cfg *config.Config, required bool) (*shape.Schema, error) {
	path := cfg.SchemaPath()
	if !required && cfg.Schema == "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return &shape.Schema{Types: map[string]*shape.Record{}}, nil
		}
	}
	return LoadSchema(path)
}

// shapeFor parses typeRef, or looks the address up in the schema.
func shapeFor(schema *shape.Schema, typeRef string, address []string) (shape.Shape, error) {
	if typeRef != "" {
		return shape.ParseType(typeRef, schema.Types)
	}
	return schema.Lookup(address)
}

func entryFor(address string, r engine.Result) QueryEntry {
	entry := QueryEntry{Address: address, QueryID: r.QueryID}
	if r.Err != nil {
		code := string(ir.CodeOf(r.Err))
		if code == "" {
			code = ErrCodeResolveFailed
		}
		entry.Error = &CLIError{Code: code, Message: r.Err.Error()}
		return entry
	}
	entry.Value = RenderValue(r.Value)
	return entry
}

func loadErrorCode(err error) string {
	if le, ok := err.(*LoadError); ok {
		return le.Code
	}
	return ErrCodeGeneric
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
