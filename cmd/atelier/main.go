package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/atelier/cmd/atelier/ask"
	chatcmder "github.com/papercomputeco/atelier/cmd/atelier/chat"
	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	describecmder "github.com/papercomputeco/atelier/cmd/atelier/describe"
	mcpcmder "github.com/papercomputeco/atelier/cmd/atelier/mcp"
	servecmder "github.com/papercomputeco/atelier/cmd/atelier/serve"
)

const rootLongDesc string = `atelier is a fashion designer chat assistant.

Text questions go to a designer model and uploaded images to a vision
model, both through an OpenAI-compatible chat-completions provider
(OpenRouter by default). The API key is read from OPENROUTER_API_KEY,
which may also be set in a .env file in the working directory.

Examples:
  atelier serve --listen :8080
  atelier ask "What should I wear to a summer wedding?"
  atelier describe ./outfit.jpg
  atelier chat`

const rootShortDesc string = "Fashion designer chat assistant"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "atelier",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	clienv.AddPersistentFlags(cmd)

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(describecmder.NewDescribeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
