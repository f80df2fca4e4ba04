// Package tui provides the terminal user interface for watching a
// swarm run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexus-swarm/nexus/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	resultStyle = lipgloss.NewStyle().PaddingLeft(2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// UpdateMsg carries one swarm update into the TUI.
type UpdateMsg struct {
	Update models.SwarmUpdate
}

// StreamClosedMsg signals that the update stream ended.
type StreamClosedMsg struct{}

// taskLine tracks one task's display state.
type taskLine struct {
	id      string
	title   string
	state   string // running, done, failed
	message string
}

// RunModel renders a swarm run: status ticker, task roster, and the
// final result.
type RunModel struct {
	goal string
	spin spinner.Model

	status   string
	tasks    []*taskLine
	byID     map[string]*taskLine
	result   string
	errText  string
	finished bool
	quitting bool
	width    int
}

// NewRunModel creates a model for one goal execution.
func NewRunModel(goal string) *RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &RunModel{
		goal:   goal,
		spin:   s,
		status: "Starting...",
		byID:   make(map[string]*taskLine),
		width:  80,
	}
}

// Init starts the spinner.
func (m *RunModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles TUI messages.
func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case UpdateMsg:
		m.apply(msg.Update)
		return m, nil

	case StreamClosedMsg:
		m.finished = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RunModel) apply(u models.SwarmUpdate) {
	switch u.Type {
	case models.UpdateStatus:
		m.status = u.Content

	case models.UpdateTaskStart:
		line := &taskLine{id: u.TaskID, title: u.Content, state: "running"}
		m.tasks = append(m.tasks, line)
		m.byID[u.TaskID] = line

	case models.UpdateTaskDone:
		if line, ok := m.byID[u.TaskID]; ok {
			line.state = "done"
		}

	case models.UpdateError:
		if line, ok := m.byID[u.TaskID]; ok && u.TaskID != "" {
			line.state = "failed"
			line.message = u.Content
		} else {
			m.errText = u.Content
		}
		if u.Final {
			m.errText = u.Content
		}

	case models.UpdateResult:
		m.result = u.Content
	}
}

// View renders the current run state.
func (m *RunModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("nexus swarm"))
	b.WriteString("  " + statusStyle.Render(truncateLine(m.goal, m.width-14)))
	b.WriteString("\n\n")

	if !m.finished {
		fmt.Fprintf(&b, "%s %s\n\n", m.spin.View(), m.status)
	}

	for _, t := range m.tasks {
		switch t.state {
		case "done":
			fmt.Fprintf(&b, "  %s %s\n", doneStyle.Render("✓"), t.title)
		case "failed":
			fmt.Fprintf(&b, "  %s %s\n", errorStyle.Render("✗"), t.title)
		default:
			fmt.Fprintf(&b, "  %s %s\n", m.spin.View(), t.title)
		}
	}
	if len(m.tasks) > 0 {
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render("Error: "+m.errText) + "\n\n")
	}

	if m.result != "" {
		b.WriteString(doneStyle.Render("Result") + "\n")
		b.WriteString(resultStyle.Render(m.result) + "\n\n")
	}

	if m.finished {
		b.WriteString(helpStyle.Render("press q to quit") + "\n")
	}
	return b.String()
}

func truncateLine(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// NewRunProgram wraps a RunModel in a tea.Program.
func NewRunProgram(goal string) (*tea.Program, *RunModel) {
	model := NewRunModel(goal)
	return tea.NewProgram(model), model
}

// Forward pumps swarm updates into the program and signals the end of
// the stream. Call it in its own goroutine.
func Forward(program *tea.Program, updates <-chan models.SwarmUpdate) {
	for u := range updates {
		program.Send(UpdateMsg{Update: u})
	}
	program.Send(StreamClosedMsg{})
}
