package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/procmon/internal/config"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/sampler"
)

// Model renders live samples from a snapshot.
type Model struct {
	cfg       config.Config
	snap      *sampler.Snapshot
	latest    model.Sample
	stream    <-chan model.Sample
	ctxCancel context.CancelFunc
	table     table.Model
	width     int
	height    int
}

func New(snap *sampler.Snapshot, cfg config.Config) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:       cfg,
		snap:      snap,
		latest:    snap.View(),
		stream:    snap.Stream(ctx, cfg.Interval),
		ctxCancel: cancel,
		table:     newTable(),
		width:     120,
		height:    40,
	}
	m.latest.Interval = cfg.Interval
	m.table.SetRows(processRows(m.latest.Processes, cfg.Limit))
	return m
}

var columns = []table.Column{
	{Title: "PID", Width: 7},
	{Title: "USER", Width: 10},
	{Title: "CPU%", Width: 7},
	{Title: "RAM", Width: 9},
	{Title: "TIME+", Width: 10},
	{Title: "COMMAND", Width: 60},
}

func newTable() table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("45"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "s":
			m.snap.SetOrder(sampler.NextOrder(m.latest.Order))
			m.apply(m.snap.View())
			return m, nil
		}
	case tickMsg:
		select {
		case samp, ok := <-m.stream:
			if ok {
				m.apply(samp)
			}
		default:
		}
		return m, tickCmd()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) apply(s model.Sample) {
	if s.Interval == 0 {
		s.Interval = m.latest.Interval
	}
	m.latest = s
	m.table.SetRows(processRows(s.Processes, m.cfg.Limit))
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
	s := m.latest
	header := titleStyle.Render("procmon") + "  " +
		subtleStyle.Render(hostLine(s)+"  "+s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))

	cpuCard := card("CPU", gaugeBar(s.CPU*100, 28))
	memCard := card("Memory", gaugeBar(s.Memory*100, 28))
	taskCard := card("Tasks",
		fmt.Sprintf("%d total, %d running", s.TotalProcesses, s.RunningProcesses))
	upCard := card("Uptime", ElapsedTime(s.UptimeSeconds))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard, taskCard, upCard)
	procCard := card(fmt.Sprintf("Processes (%d shown, sort: %s)", len(m.table.Rows()), s.Order),
		m.table.View())
	footer := subtleStyle.Render("q quit  s cycle sort (" + strings.Join(sampler.OrderNames(), "/") + ")  ↑/↓ scroll")

	return lipgloss.JoinVertical(lipgloss.Left, header, line1, procCard, footer)
}

func hostLine(s model.Sample) string {
	parts := make([]string, 0, 2)
	if s.OS != "" {
		parts = append(parts, s.OS)
	}
	if s.Kernel != "" {
		parts = append(parts, "kernel "+s.Kernel)
	}
	return strings.Join(parts, " | ")
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
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
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

// processRows converts the table into display rows, keeping at most limit
// entries when limit > 0.
func processRows(procs []model.Process, limit int) []table.Row {
	n := len(procs)
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([]table.Row, 0, n)
	for _, p := range procs[:n] {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.PID),
			truncate(p.User, 10),
			Percent(p.CPU),
			Megabytes(p.RAMMB),
			ElapsedTime(p.AgeSeconds),
			truncate(p.Command, 60),
		})
	}
	return rows
}

// RunTUI starts the Bubble Tea program on an already refreshed snapshot.
func RunTUI(snap *sampler.Snapshot, cfg config.Config) error {
	prog := tea.NewProgram(New(snap, cfg), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
