package mcpcmder

import (
	"context"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	"github.com/papercomputeco/atelier/pkg/mcptools"
)

const mcpLongDesc string = `Serve the designer and vision models as MCP tools over stdio.

Tools:
  respond           answer a fashion question (prompt, optional context)
  respond_to_image  analyze an image on this machine (image_path, prompt)

Logs are written to stderr so stdout carries only protocol traffic.

Examples:
  atelier mcp
  atelier mcp --config atelier.toml`

const mcpShortDesc string = "Serve the gateway as MCP tools over stdio"

type mcpCommander struct{}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := clienv.Load(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return cmder.serve(ctx, env.Gateway, env.Logger, &mcp.StdioTransport{})
		},
	}

	return cmd
}

func (c *mcpCommander) serve(ctx context.Context, responder mcptools.Responder, logger *zap.Logger, transport mcp.Transport) error {
	logger.Info("serving MCP tools", zap.String("version", mcptools.Version))
	return mcptools.NewServer(responder, logger).Run(ctx, transport)
}
