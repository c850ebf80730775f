// Package tui is the terminal display surface: a bubbletea program bound to
// one chat session.
package tui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

// Session is the part of session.Session the terminal surface drives.
type Session interface {
	Submit(ctx context.Context, prompt, priorContext string) ([]transcript.Turn, error)
	SubmitImage(ctx context.Context, imagePath, reference, prompt string) ([]transcript.Turn, error)
	Transcript() *transcript.Transcript
}

// imageCommand submits a local image: /image <path> [prompt]
const imageCommand = "/image"

// replyMsg carries the outcome of one submission back to the program.
type replyMsg struct {
	turns []transcript.Turn
	err   error
}

// Model is the bubbletea model for an interactive chat.
type Model struct {
	ctx     context.Context
	session Session

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	styles   styles
	profile  termenv.Profile
	markdown *glamour.TermRenderer

	width  int
	height int
	ready  bool

	busy bool
	err  error
}

type styles struct {
	title     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	image     lipgloss.Style
	status    lipgloss.Style
	err       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#D4AF37")).Padding(0, 1),
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("#800020")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#D4AF37")),
		image:     r.NewStyle().Italic(true).Faint(true),
		status:    r.NewStyle().Faint(true),
		err:       r.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
	}
}

// New creates a chat model for sess. Styles are rendered for out using the
// given colour profile.
func New(ctx context.Context, sess Session, out io.Writer, profile termenv.Profile) Model {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(profile)

	input := textinput.New()
	input.Placeholder = "Ask about an outfit, or /image <path> [prompt]"
	input.Prompt = "> "
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:      ctx,
		session:  sess,
		viewport: viewport.New(0, 0),
		input:    input,
		spinner:  spin,
		styles:   newStyles(r),
		profile:  profile,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			return m.submit()
		}

		// Input is blocked while a call is outstanding.
		if m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case replyMsg:
		m.busy = false
		m.err = msg.err
		m.input.Focus()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit parses the input line and starts the gateway call.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.busy = true
	m.err = nil

	ctx, sess := m.ctx, m.session
	var call tea.Cmd
	if path, prompt, ok := parseImageCommand(line); ok {
		call = func() tea.Msg {
			turns, err := sess.SubmitImage(ctx, path, path, prompt)
			return replyMsg{turns: turns, err: err}
		}
	} else {
		call = func() tea.Msg {
			turns, err := sess.Submit(ctx, line, "")
			return replyMsg{turns: turns, err: err}
		}
	}

	return m, tea.Batch(m.spinner.Tick, call)
}

// parseImageCommand splits "/image <path> [prompt]". A missing prompt falls
// back to the default image prompt.
func parseImageCommand(line string) (path, prompt string, ok bool) {
	rest, found := strings.CutPrefix(line, imageCommand)
	if !found || (rest != "" && rest[0] != ' ') {
		return "", "", false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", "", false
	}

	path = fields[0]
	prompt = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), path))
	if prompt == "" {
		prompt = gateway.DefaultImagePrompt
	}
	return path, prompt, true
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	// title, status and input lines
	vh := height - 3
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.input.Width = width - len(m.input.Prompt) - 1

	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	style := "dark"
	if m.profile == termenv.Ascii {
		style = "notty"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(m.profile),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.markdown = md
	}
	m.ready = true
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, t := range m.session.Transcript().All() {
		b.WriteString(m.renderTurn(t))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTurn(t transcript.Turn) string {
	label := m.styles.assistant.Render("Designer")
	if t.Role == transcript.RoleUser {
		label = m.styles.user.Render("You")
	}

	if t.Kind == transcript.KindImage {
		return label + "\n" + m.styles.image.Render("[image] "+t.Content) + "\n"
	}

	body := t.Content
	if m.markdown != nil {
		if out, err := m.markdown.Render(t.Content); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}
	return label + "\n" + body + "\n"
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	return strings.Join([]string{
		m.styles.title.Render("atelier · fashion designer"),
		m.viewport.View(),
		m.statusLine(),
		m.input.View(),
	}, "\n")
}

func (m Model) statusLine() string {
	var line string
	switch {
	case m.busy:
		line = m.spinner.View() + " consulting the archives..."
	case m.err != nil:
		return m.styles.err.Render(ansi.Truncate("error: "+m.err.Error(), m.width, "…"))
	default:
		line = "enter to send · /image <path> [prompt] · esc to quit"
	}
	return m.styles.status.Render(ansi.Truncate(line, m.width, "…"))
}
