package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/valvesat/host"
)

var errCancelled = errors.New("cancelled")

// IsCancelled reports whether err came from the user quitting a view.
func IsCancelled(err error) bool { return errors.Is(err, errCancelled) }

// LatencyMsg reports the latency the processor now publishes.
type LatencyMsg int

// StoppedMsg ends a live session.
type StoppedMsg struct{ Err error }

// LiveModel edits processor parameters while audio plays. Parameter writes
// go straight to the lock-free parameter values the audio callback reads.
type LiveModel struct {
	Params   *host.Parameters
	Source   string
	Latency  int
	selected int
	Err      error
}

// NewLiveModel returns a model editing ps.
func NewLiveModel(ps *host.Parameters, source string) LiveModel {
	return LiveModel{Params: ps, Source: source}
}

// Init implements tea.Model.
func (m LiveModel) Init() tea.Cmd { return nil }

// Selected returns the parameter under the cursor.
func (m LiveModel) Selected() *host.Parameter { return m.Params.All()[m.selected] }

// Update implements tea.Model.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		all := m.Params.All()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.selected = (m.selected + len(all) - 1) % len(all)
		case "down", "j":
			m.selected = (m.selected + 1) % len(all)
		case "right", "l", "+":
			nudge(m.Selected(), 1)
		case "left", "h", "-":
			nudge(m.Selected(), -1)
		case "m":
			p := m.Params.Mode
			p.Set(float64((p.Index() + 1) % len(p.Choices)))
		case "r":
			m.Selected().Reset()
		}

	case LatencyMsg:
		m.Latency = int(msg)

	case StoppedMsg:
		m.Err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// nudge moves p by one step, or by 1% of its range for continuous values.
func nudge(p *host.Parameter, dir int) {
	step := p.Step
	if len(p.Choices) == 0 {
		step = max(step, (p.Max-p.Min)/100)
	}
	p.Set(p.Value() + float64(dir)*step)
}

// View implements tea.Model.
func (m LiveModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("valvesat play"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s   %s %d samples\n\n", mutedStyle.Render("source:"), m.Source, mutedStyle.Render("latency:"), m.Latency)

	for i, p := range m.Params.All() {
		cursor := "  "
		name := fmt.Sprintf("%-12s", p.Name)
		if i == m.selected {
			cursor = "> "
			name = barStyle.Render(name)
		}
		fmt.Fprintf(&sb, "%s%s %s\n", cursor, name, p.Format())
	}

	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("up/down select  left/right adjust  m mode  r reset  q quit"))
	sb.WriteString("\n")
	return sb.String()
}
