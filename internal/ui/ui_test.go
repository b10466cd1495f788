package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/procmon/internal/config"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/sampler"
	"github.com/Dicklesworthstone/procmon/internal/source/sourcetest"
)

func TestElapsedTime(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{86399, "23:59:59"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ElapsedTime(tt.in), "%d", tt.in)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "123 MB", Megabytes(123))
	assert.Equal(t, "0 MB", Megabytes(0))
	assert.Equal(t, "15.6%", Percent(0.15625))
	assert.Equal(t, "bash", truncate("bash", 10))
	assert.Equal(t, "abc…", truncate("abcdefgh", 4))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestGaugeBar(t *testing.T) {
	assert.Equal(t, "[░░░░]   0.0%", gaugeBar(-3, 4))
	assert.Equal(t, "[██░░]  50.0%", gaugeBar(50, 4))
	assert.Equal(t, "[████] 100.0%", gaugeBar(250, 4))
}

func TestProcessRows(t *testing.T) {
	procs := []model.Process{
		{PID: 7, User: "root", Command: "sshd", CPU: 0.25, RAMMB: 12, AgeSeconds: 3661},
		{PID: 9, User: "", Command: "bash", CPU: 0, RAMMB: 0, AgeSeconds: 0},
	}
	rows := processRows(procs, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"7", "root", "25.0%", "12 MB", "01:01:01", "sshd"}, []string(rows[0]))

	assert.Len(t, processRows(procs, 1), 1)
	assert.Len(t, processRows(procs, 5), 2)
	assert.Empty(t, processRows(nil, 0))
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	src := sourcetest.New()
	src.System = model.SystemCounters{
		CPU:           model.CPUBuckets{User: 25, Idle: 75},
		MemTotalKB:    100,
		MemFreeKB:     50,
		UptimeSeconds: 100,
	}
	src.HostInfo = model.Host{Kernel: "6.1.0", OS: "Test OS"}
	src.Add(model.ProcessCounters{PID: 1, UserTicks: 100, Command: "init", ResidentKB: 4096})
	src.Add(model.ProcessCounters{PID: 5, UserTicks: 5000, StartTicks: 5000, Command: "busy", ResidentKB: 1024})

	snap := sampler.New(src, nil, sampler.CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))

	cfg := config.Default()
	cfg.Interval = time.Hour
	m := New(snap, cfg)
	t.Cleanup(m.ctxCancel)
	return m
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "Test OS")
	assert.Contains(t, out, "kernel 6.1.0")
	assert.Contains(t, out, "sort: cpu")
	assert.Contains(t, out, "busy")
	assert.Contains(t, out, "00:01:40")
}

func TestModel_SortKeyCycles(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, "cpu", m.latest.Order)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, "mem", m.latest.Order)
	assert.Equal(t, "1", m.table.Rows()[0][0])
	assert.Equal(t, time.Hour, m.latest.Interval)

	for range sampler.OrderNames()[1:] {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	}
	assert.Equal(t, "cpu", m.latest.Order)
	assert.Equal(t, "5", m.table.Rows()[0][0])
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 10, m.height)
	assert.NotEmpty(t, m.View())
}
