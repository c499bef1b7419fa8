// Package ui provides the Bubbletea views of the valvesat commands.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/valvesat/dsp/core"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8702A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C14E"))
	hotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7263D")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
)

// RenderModel shows the progress of an offline render.
type RenderModel struct {
	Input    string
	Output   string
	Mode     string
	Done     int
	Total    int
	PeakDB   float64
	MaxDB    float64
	Started  time.Time
	Finished bool
	Elapsed  time.Duration
	Clipped  int
	Err      error
}

// NewRenderModel returns an idle model.
func NewRenderModel() RenderModel {
	return RenderModel{PeakDB: math.Inf(-1), MaxDB: math.Inf(-1)}
}

// Init implements tea.Model.
func (m RenderModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m RenderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Err = errCancelled
			return m, tea.Quit
		}

	case StartMsg:
		m.Input = msg.Input
		m.Output = msg.Output
		m.Mode = msg.Mode
		m.Total = msg.Frames
		m.Started = time.Now()

	case ProgressMsg:
		m.Done = msg.Done
		m.Total = msg.Total
		m.PeakDB = core.LinearToDB(msg.Peak)
		m.MaxDB = max(m.MaxDB, m.PeakDB)

	case CompleteMsg:
		m.Finished = true
		m.Elapsed = msg.Elapsed
		m.Clipped = msg.Clipped
		m.Err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Fraction returns the completed share in [0, 1].
func (m RenderModel) Fraction() float64 {
	if m.Total <= 0 {
		return 0
	}
	return min(float64(m.Done)/float64(m.Total), 1)
}

// View implements tea.Model.
func (m RenderModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("valvesat render"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s -> %s (%s)\n", mutedStyle.Render("file:"), m.Input, m.Output, m.Mode)

	filled := int(m.Fraction() * barWidth)
	sb.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	sb.WriteString(mutedStyle.Render(strings.Repeat("░", barWidth-filled)))
	fmt.Fprintf(&sb, " %5.1f%%\n", 100*m.Fraction())

	peak := fmt.Sprintf("peak %6.1f dBFS", m.PeakDB)
	if m.PeakDB > 0 {
		peak = hotStyle.Render(peak)
	}
	sb.WriteString(peak)
	sb.WriteString("\n")

	if m.Finished {
		switch {
		case m.Err != nil:
			sb.WriteString(hotStyle.Render("failed: " + m.Err.Error()))
		case m.Clipped > 0:
			sb.WriteString(hotStyle.Render(fmt.Sprintf("done in %s, %d samples clipped", m.Elapsed.Round(time.Millisecond), m.Clipped)))
		default:
			sb.WriteString(okStyle.Render(fmt.Sprintf("done in %s", m.Elapsed.Round(time.Millisecond))))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
