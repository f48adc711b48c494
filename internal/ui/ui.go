package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/statusline/internal/format"
	"github.com/Dicklesworthstone/statusline/internal/model"
)

// Stream hands frames from the poll loop to the preview. Only the newest
// frame is kept; the loop never waits on the terminal.
type Stream struct {
	ch chan model.Frame
}

func NewStream() *Stream { return &Stream{ch: make(chan model.Frame, 1)} }

func (s *Stream) Publish(f model.Frame) {
	for {
		select {
		case s.ch <- f:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Stream) Frames() <-chan model.Frame { return s.ch }

// Model renders live frames from the poll loop.
type Model struct {
	units     format.Units
	latest    model.Frame
	stream    <-chan model.Frame
	ctxCancel context.CancelFunc
	cores     table.Model
	width     int
	height    int
}

func New(stream <-chan model.Frame, cancel context.CancelFunc, units format.Units) *Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "core", Width: 6},
			{Title: "load", Width: 40},
		}),
		table.WithHeight(8),
	)
	return &Model{
		units:     units,
		stream:    stream,
		ctxCancel: cancel,
		cores:     t,
		width:     120,
		height:    40,
	}
}

// Messages
type (
	tickMsg  struct{}
	frameMsg model.Frame
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		}
	case frameMsg:
		m.setFrame(model.Frame(msg))
	case tickMsg:
		select {
		case f, ok := <-m.stream:
			if ok {
				m.setFrame(f)
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) setFrame(f model.Frame) {
	m.latest = f
	rows := make([]table.Row, 0, len(f.Readings.Loads))
	for _, l := range f.Readings.Loads {
		rows = append(rows, table.Row{fmt.Sprintf("cpu%d", l.ID), gaugeBar(l.Load*100, 28)})
	}
	m.cores.SetRows(rows)
	if h := len(rows) + 1; h < 16 {
		m.cores.SetHeight(h)
	}
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	f := m.latest
	status := "steady"
	if f.Readings.Warming {
		status = "warming up"
	}
	header := titleStyle.Render("statusline preview") + "  " +
		subtleStyle.Render(f.At.Format("Mon Jan 2 15:04:05 MST 2006")+"  "+status+"  (q to quit)")

	lineCard := card("Line", f.Line)

	r := f.Readings
	netBody := "unavailable"
	if r.TrafficOK {
		netBody = fmt.Sprintf("RX %s\nTX %s\nover %.2fs", m.units.Format(r.RxBits), m.units.Format(r.TxBits), r.Elapsed)
	}
	netCard := card("Network", netBody)

	memBody := "unavailable"
	if r.MemoryOK {
		memBody = gaugeBar(r.MemUsed*100, 28)
	}
	memCard := card("Memory", memBody)

	wsCard := card("Workspaces", workspaceList(f.Workspaces))

	row := lipgloss.JoinHorizontal(lipgloss.Top, netCard, memCard, wsCard)
	coresCard := card("CPU", m.cores.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, lineCard, row, coresCard)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if !(pct >= 0) {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func workspaceList(list []model.Workspace) string {
	if len(list) == 0 {
		return "none"
	}
	lines := make([]string, 0, len(list))
	for _, ws := range list {
		mark := " "
		switch {
		case ws.Urgent:
			mark = "!"
		case ws.Focused:
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %-3d %s", mark, ws.Num, truncate(ws.Name, 18)))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunTUI starts the Bubble Tea program.
func RunTUI(stream <-chan model.Frame, cancel context.CancelFunc, units format.Units) error {
	prog := tea.NewProgram(New(stream, cancel, units), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
