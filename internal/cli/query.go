package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/confql/internal/engine"
)

// QueryResult is the output of the query command.
type QueryResult struct {
	Results []QueryEntry `json:"results" yaml:"results"`
	Failed  int          `json:"failed" yaml:"failed"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <address>...",
		Short: "Resolve several addresses in parallel",
		Long: `Resolve several dotted addresses at once. Each address takes its
shape from the schema. Addresses resolve independently: one failing
does not affect the others.

Exit codes:
  0 - Every address resolved
  1 - One or more addresses failed to resolve
  2 - Command error (bad address, missing schema, invalid configuration)

Examples:
  confql query title things
  confql query things settings.timeout --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, rawAddresses []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := opts.Config()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	schema, err := configuredSchema(cfg, true)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), err)
	}

	reqs := make([]engine.Request, 0, len(rawAddresses))
	for _, raw := range rawAddresses {
		address, err := engine.ParseAddress(raw)
		if err != nil {
			return commandError(formatter, ErrCodeAddress, err)
		}
		req, err := engine.RequestFor(schema, address)
		if err != nil {
			return commandError(formatter, ErrCodeAddress, err)
		}
		reqs = append(reqs, req)
	}

	eng, logger, err := newEngine(cmd, cfg)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	formatter.VerboseLog("Resolving %d address(es) with parallelism %d", len(reqs), cfg.Parallelism)
	results := eng.ResolveFields(ctxOrBackground(cmd.Context()), reqs)

	out := QueryResult{Results: make([]QueryEntry, 0, len(results))}
	for i, r := range results {
		entry := entryFor(rawAddresses[i], r)
		if entry.Error != nil {
			out.Failed++
			logger.Info("resolve failed", "query_id", r.QueryID, "address", rawAddresses[i], "error", r.Err)
		}
		out.Results = append(out.Results, entry)
	}

	resp := CLIResponse{Status: "ok", Data: out}
	if out.Failed > 0 {
		resp.Status = "error"
	}
	if err := formatter.Respond(resp); err != nil {
		return err
	}

	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d address(es) failed", out.Failed, len(results)))
	}
	return nil
}
