package describecmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	"github.com/papercomputeco/atelier/pkg/gateway"
)

const describeLongDesc string = `Send an image to the vision model and print its analysis.

The image is read from disk and sent inline as a base64 data URI; its
type is guessed from the file extension. Without a prompt the default
outfit analysis prompt is used.

Examples:
  atelier describe ./look.jpg
  atelier describe ./look.png is this appropriate for a job interview?`

const describeShortDesc string = "Analyze an outfit image"

type describeCommander struct{}

func NewDescribeCmd() *cobra.Command {
	cmder := &describeCommander{}

	cmd := &cobra.Command{
		Use:   "describe <image> [prompt...]",
		Short: describeShortDesc,
		Long:  describeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := clienv.Load(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			return cmder.run(cmd.Context(), cmd, env.Gateway, args[0], strings.Join(args[1:], " "))
		},
	}

	return cmd
}

func (c *describeCommander) run(ctx context.Context, cmd *cobra.Command, gw *gateway.Gateway, imagePath, prompt string) error {
	if prompt == "" {
		prompt = gateway.DefaultImagePrompt
	}

	result, err := gw.RespondToImage(ctx, imagePath, prompt)
	if err != nil {
		return fmt.Errorf("could not analyze %s: %w", imagePath, err)
	}

	if result.HasText() {
		fmt.Fprintln(cmd.OutOrStdout(), *result.Text)
	}
	return nil
}
