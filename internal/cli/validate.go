package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/confql/internal/compiler"
	"github.com/roach88/confql/internal/shape"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid" yaml:"valid"`
	Query    string                     `json:"query,omitempty" yaml:"query,omitempty"`
	Types    []string                   `json:"types,omitempty" yaml:"types,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [schema]",
		Short: "Validate a schema",
		Long: `Compile a CUE schema and check it for consistency: unknown type
references, a missing query type, derive directives on non-scalar fields
and duplicate identifier fields.

Record types whose required fields form a cycle are reported as
warnings: no finite document tree satisfies them.

The schema is the argument if given, otherwise --schema or
CONFQL_SCHEMA, otherwise schema.cue under the data root.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := opts.Config()
		if err != nil {
			return commandError(formatter, ErrCodeConfig, err)
		}
		path = cfg.SchemaPath()
	}
	formatter.VerboseLog("Validating schema %s", path)

	schema, err := LoadSchema(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			return outputValidationErrors(formatter, []compiler.ValidationError{{
				Field:   "schema",
				Message: loadErr.Error(),
				Code:    loadErr.Code,
			}})
		}
		return commandError(formatter, loadErrorCode(err), err)
	}

	if errs := compiler.Validate(schema); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, schema)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, schema *shape.Schema) error {
	if formatter.Format != "text" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Query:    schema.Query,
			Types:    schema.TypeNames(),
			Warnings: compiler.AnalyzeCycles(schema),
		})
	}

	formatter.Check("Schema valid: %d type(s), query type %s", len(schema.Types), schema.Query)
	for _, w := range compiler.AnalyzeCycles(schema) {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", w.Level, w.Message)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format != "text" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if formatter.Format == "json" {
			encoder := json.NewEncoder(formatter.Writer)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(response); err != nil {
				return err
			}
			return failure
		}
		if err := encodeYAML(formatter.Writer, response); err != nil {
			return err
		}
		return failure
	}

	formatter.Cross("Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return failure
}
