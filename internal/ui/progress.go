// Package ui renders live profiler progress with Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"buildpulse/internal/timing"
)

const slowFeedSize = 8

type progressModel struct {
	title     string
	events    <-chan timing.Event
	spinner   spinner.Model
	prog      progress.Model
	seen      int
	completed int
	slowCount int
	eta       time.Duration
	elapsed   time.Duration
	slowFeed  []slowItem
	width     int
	done      bool
}

type slowItem struct {
	display  string
	duration time.Duration
}

type eventMsg timing.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders profiler
// progress from a registry event channel. The model quits when the
// channel closes.
func NewProgressModel(title string, events <-chan timing.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(timing.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d units", m.title, m.completed, m.seen)
	if m.elapsed > 0 {
		header += fmt.Sprintf(", %s elapsed", m.elapsed.Round(time.Second))
	}
	if m.eta > 0 && !m.done {
		header += fmt.Sprintf(", eta %s", m.eta.Round(time.Second))
	}
	header += ")"
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if len(m.slowFeed) > 0 {
		b.WriteString(slowHeaderStyle().Render(fmt.Sprintf("slow units (%d total)", m.slowCount)))
		b.WriteString("\n")
		durWidth := 12
		nameWidth := m.width - durWidth - 4
		if nameWidth < 20 {
			nameWidth = 20
		}
		for _, item := range m.slowFeed {
			dur := slowDurStyle().Render(fmt.Sprintf("%9.1f ms", float64(item.duration)/float64(time.Millisecond)))
			b.WriteString(fmt.Sprintf("  %s %s\n", dur, truncate(item.display, nameWidth)))
		}
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev timing.Event) tea.Cmd {
	switch ev.Kind {
	case timing.EventUnitSeen:
		m.seen++
	case timing.EventUnitDone:
		m.completed++
	case timing.EventSlowUnit:
		m.slowCount++
		m.slowFeed = append(m.slowFeed, slowItem{display: ev.Display, duration: ev.Duration})
		if len(m.slowFeed) > slowFeedSize {
			m.slowFeed = m.slowFeed[len(m.slowFeed)-slowFeedSize:]
		}
	case timing.EventProgress:
		m.eta = ev.Snapshot.ETA
		m.elapsed = ev.Snapshot.Elapsed
	}

	if m.seen > 0 {
		return m.prog.SetPercent(float64(m.completed) / float64(m.seen))
	}
	return nil
}

func slowHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
}

func slowDurStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
