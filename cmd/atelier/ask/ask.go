package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	"github.com/papercomputeco/atelier/pkg/gateway"
)

const askLongDesc string = `Ask the designer model a single question and print the reply.

The prompt is every remaining argument joined by spaces. --context is
prepended to the prompt the same way the chat front ends do it.

Examples:
  atelier ask "What colors go with olive green?"
  atelier ask --context "I have a navy blazer" what shoes should I pair with it`

const askShortDesc string = "Ask the designer a one-off question"

type askCommander struct {
	context string
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [--context text] <prompt...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := clienv.Load(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			return cmder.run(cmd.Context(), cmd, env.Gateway, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&cmder.context, "context", "", "Earlier conversation to send with the prompt")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, gw *gateway.Gateway, prompt string) error {
	result, err := gw.Respond(ctx, prompt, c.context)
	if err != nil {
		return fmt.Errorf("could not get a reply: %w", err)
	}

	if result.HasText() {
		fmt.Fprintln(cmd.OutOrStdout(), *result.Text)
	}
	return nil
}
