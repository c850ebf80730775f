package chatcmder

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	"github.com/papercomputeco/atelier/pkg/session"
	"github.com/papercomputeco/atelier/pkg/tui"
)

const chatLongDesc string = `Chat with the designer in the terminal.

Type a question and press enter. Use /image <path> [prompt] to send a
local image to the vision model. The conversation lasts until you quit
and is not saved.

When stdin is not a terminal each input line is sent as one prompt and
the replies are printed, one per line.

Examples:
  atelier chat
  echo "What goes with a camel coat?" | atelier chat`

const chatShortDesc string = "Interactive terminal chat"

type chatCommander struct{}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	return cmd
}

// interactive reports whether in is a terminal.
func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	in := cmd.InOrStdin()
	tty := interactive(in)

	// The full-screen program owns the terminal, so logs are dropped there.
	var logOut io.Writer = os.Stderr
	if tty {
		logOut = io.Discard
	}

	env, err := clienv.Load(cmd, logOut)
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sess := session.New(uuid.NewString(), env.Gateway, "", env.Logger)
	defer sess.Close()

	if !tty {
		return tui.RunLines(ctx, sess, in, cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	profile := termenv.NewOutput(out).EnvColorProfile()
	model := tui.New(ctx, sess, out, profile)

	if _, err := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run(); err != nil {
		return fmt.Errorf("chat ended: %w", err)
	}
	return nil
}
