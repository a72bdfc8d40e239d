package debugui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riverwm/river/internal/control"
)

const refreshInterval = 500 * time.Millisecond

// Model polls river's control socket for list-outputs/list-views and
// renders the result. It never sends a mutating command (spec.md §9:
// debug introspection is read-only).
type Model struct {
	socketPath string

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	outputs string
	views   string
	err     error
}

// New returns a Model that will poll the control socket at socketPath.
func New(socketPath string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Model{socketPath: socketPath, spinner: s}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), tickCmd())
}

type refreshMsg struct {
	outputs string
	views   string
	err     error
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) refreshCmd() tea.Cmd {
	path := m.socketPath
	return func() tea.Msg {
		var out strings.Builder
		outReply, err := control.Send(path, "", []string{"list-outputs"})
		if err != nil {
			return refreshMsg{err: err}
		}
		if !outReply.OK {
			return refreshMsg{err: fmt.Errorf("list-outputs: %s", outReply.Message)}
		}
		out.WriteString(outReply.Output)

		viewReply, err := control.Send(path, "", []string{"list-views"})
		if err != nil {
			return refreshMsg{err: err}
		}
		if !viewReply.OK {
			return refreshMsg{err: fmt.Errorf("list-views: %s", viewReply.Message)}
		}
		return refreshMsg{outputs: out.String(), views: viewReply.Output}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.render())
	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())
	case refreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.outputs = msg.outputs
			m.views = msg.views
		}
		if m.ready {
			m.viewport.SetContent(m.render())
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) render() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Outputs"))
	b.WriteString("\n")
	if m.outputs == "" {
		b.WriteString(mutedStyle.Render("(none)\n"))
	} else {
		b.WriteString(m.outputs)
	}

	b.WriteString(headerStyle.Render("Views"))
	b.WriteString("\n")
	if m.views == "" {
		b.WriteString(mutedStyle.Render("(none)\n"))
	} else {
		b.WriteString(m.views)
	}

	return b.String()
}

func (m *Model) View() string {
	if !m.ready {
		return fmt.Sprintf("%s loading...\n", m.spinner.View())
	}

	title := titleStyle.Render("river inspect") + " " + m.spinner.View()
	var footer string
	if m.err != nil {
		footer = errorStyle.Render(fmt.Sprintf("error: %v", m.err))
	} else {
		footer = mutedStyle.Render("[r] refresh  [q] quit")
	}
	return fmt.Sprintf("%s\n%s\n%s\n", title, m.viewport.View(), footer)
}
