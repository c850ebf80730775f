package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/atelier/pkg/transcript"
)

// maxLineSize bounds one line-mode prompt. Pasted prompts can exceed the
// scanner's 64 KiB default.
const maxLineSize = 1 << 20

// RunLines is the plain line-mode chat used when stdin is not a terminal. Each
// input line is one submission; replies and errors are written to out.
func RunLines(ctx context.Context, sess Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var (
			turns []transcript.Turn
			err   error
		)
		if path, prompt, ok := parseImageCommand(line); ok {
			turns, err = sess.SubmitImage(ctx, path, path, prompt)
		} else {
			turns, err = sess.Submit(ctx, line, "")
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		for _, t := range turns {
			if t.Role == transcript.RoleAssistant {
				if t.Kind == transcript.KindImage {
					fmt.Fprintf(out, "[image] %s\n", t.Content)
					continue
				}
				fmt.Fprintln(out, t.Content)
			}
		}
	}
	return scanner.Err()
}
