// Package tui renders a live follow run in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/linebot/internal/follower"
	"github.com/san-kum/linebot/internal/track"
)

const (
	historyCapacity = 240
	frameInterval   = 33 * time.Millisecond
	pollInterval    = 2 * time.Millisecond
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives the simulated follower and shows the pipeline state.
type Model struct {
	sim *track.Simulator
	fol *follower.Follower

	now       time.Time
	last      follower.Tick
	positions []float64
	outputs   []float64
}

func NewModel(sim *track.Simulator, fol *follower.Follower) Model {
	return Model{
		sim:       sim,
		fol:       fol,
		now:       time.Unix(0, 0),
		positions: make([]float64, 0, historyCapacity),
		outputs:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		steps := int(frameInterval / pollInterval)
		for i := 0; i < steps; i++ {
			m.now = m.now.Add(pollInterval)
			if t, ok := m.fol.Tick(m.now); ok {
				m.last = t
			}
			m.sim.Advance(pollInterval)
		}
		if m.fol.Active() {
			m.positions = push(m.positions, m.last.Position)
			m.outputs = push(m.outputs, m.last.Output)
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.fol.Active() {
				m.fol.Stop()
			} else {
				m.fol.Start()
			}
		case "up":
			m.nudge("kp", 0.25)
		case "down":
			m.nudge("kp", -0.25)
		case "right":
			m.nudge("kd", 0.1)
		case "left":
			m.nudge("kd", -0.1)
		case "I":
			m.nudge("ki", 0.1)
		case "i":
			m.nudge("ki", -0.1)
		case "B":
			m.nudge("base", 5)
		case "b":
			m.nudge("base", -5)
		}
	}
	return m, nil
}

func (m *Model) nudge(param string, delta float64) {
	p := m.fol.Params()
	switch param {
	case "kp":
		p.PID.Kp = max0(p.PID.Kp + delta)
	case "ki":
		p.PID.Ki = max0(p.PID.Ki + delta)
	case "kd":
		p.PID.Kd = max0(p.PID.Kd + delta)
	case "base":
		p.Base += int(delta)
		if p.Base < 0 {
			p.Base = 0
		}
	}
	m.fol.SetParams(p)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("linebot live"))
	b.WriteString("\n")

	mode := "active"
	if !m.fol.Active() {
		mode = idleStyle.Render("idle (space to start)")
	}
	b.WriteString(row("mode", mode))

	p := m.fol.Params()
	b.WriteString(row("gains", fmt.Sprintf("kp=%.2f ki=%.2f kd=%.2f", p.PID.Kp, p.PID.Ki, p.PID.Kd)))
	b.WriteString(row("drive", fmt.Sprintf("base=%d limit=%d", p.Base, p.SpeedLimit)))
	b.WriteString(row("position", fmt.Sprintf("%+7.2f mm", m.last.Position)))
	b.WriteString(row("output", fmt.Sprintf("%+7.2f", m.last.Output)))
	b.WriteString(row("wheels", fmt.Sprintf("L=%d R=%d", m.last.Left, m.last.Right)))
	b.WriteString(row("sensors", barStyle.Render(sensorBar(m.last.Readings))))

	if len(m.positions) > 1 {
		graph := asciigraph.Plot(m.positions,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("lateral offset (mm)"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space start/stop · ↑/↓ kp · ←/→ kd · i/I ki · b/B base · q quit"))
	b.WriteString("\n")

	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// sensorBar draws the normalized readings, darkest channels tallest.
func sensorBar(readings []int) string {
	if len(readings) == 0 {
		return ""
	}
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, v := range readings {
		level := (1000 - v) * (len(blocks) - 1) / 1000
		if level < 0 {
			level = 0
		}
		if level >= len(blocks) {
			level = len(blocks) - 1
		}
		b.WriteRune(blocks[level])
	}
	return b.String()
}

func push(buf []float64, v float64) []float64 {
	if len(buf) == historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:historyCapacity-1]
	}
	return append(buf, v)
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
