package cli

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/roach88/confql/internal/engine"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolution over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing a "resolve" tool.

The tool takes a dotted address and an optional type reference and
returns the resolved value as JSON. Logs go to stderr.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := opts.Config()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}
	schema, err := configuredSchema(cfg, false)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), err)
	}
	eng, logger, err := newEngine(cmd, cfg)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	logger.Info("serving", "data_root", cfg.DataRoot, "types", len(schema.Types))
	if err := server.ServeStdio(NewMCPServer(eng, schema)); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	return nil
}

// NewMCPServer creates an MCP server whose "resolve" tool resolves
// addresses with eng, taking shapes from schema.
func NewMCPServer(eng *engine.Engine, schema *shape.Schema) *server.MCPServer {
	s := server.NewMCPServer(
		"confql",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	tool := mcp.NewTool("resolve",
		mcp.WithDescription("Resolve a dotted address in the document tree and return its value as JSON"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description(`Dotted address such as "things" or "things.widget.size"; empty for the root`),
		),
		mcp.WithString("type",
			mcp.Description(`Type reference such as "[Thing!]!" or "Int"; defaults to the schema's declaration`),
		),
	)
	s.AddTool(tool, resolveToolHandler(eng, schema))

	return s
}

func resolveToolHandler(eng *engine.Engine, schema *shape.Schema) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawAddress, err := request.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		address, err := engine.ParseAddress(rawAddress)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s, err := shapeFor(schema, request.GetString("type", ""), address)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := eng.ResolveFields(ctx, []engine.Request{{Address: address, Shape: s}})[0]
		if result.Err != nil {
			return mcp.NewToolResultError(result.Err.Error()), nil
		}
		data, err := ir.MarshalCanonical(result.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", rawAddress, err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
