package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mikaelreiersolmoen/tracedog/internal/config"
	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"go.uber.org/zap"
)

const refreshInterval = 100 * time.Millisecond

// Collector is a running data source the viewer can pause and resume
type Collector interface {
	Start() error
	Stop() error
	Running() bool
	StatusChan() <-chan string
}

type keyMap struct {
	Quit      key.Binding
	Order     key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	RemoveOne key.Binding
	Drain     key.Binding
	Pause     key.Binding
	Window    key.Binding
	Copy      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Order, k.Grow, k.Shrink, k.RemoveOne, k.Drain, k.Pause, k.Window, k.Copy}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Order:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
	Grow:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "grow")),
	Shrink:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink")),
	RemoveOne: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
	Drain:     key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "drain")),
	Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Window:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "window")),
	Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
}

type Model struct {
	viewport  viewport.Model
	help      help.Model
	trace     *trace.Trace
	collector Collector
	prefs     config.Preferences
	logger    *zap.Logger

	ready     bool
	width     int
	height    int
	windowOn  bool
	status    string
	message   string
	lastRange [2]float64
	err       error
}

type tickMsg time.Time
type statusMsg string
type errMsg error

// NewModel creates the viewer. collector may be nil for static data.
func NewModel(tr *trace.Trace, collector Collector, prefs config.Preferences, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		help:      help.New(),
		trace:     tr,
		collector: collector,
		prefs:     prefs,
		logger:    logger,
		windowOn:  prefs.Window > 0,
	}
}

// Preferences returns the preferences as changed during the session
func (m Model) Preferences() config.Preferences {
	return m.prefs
}

// Err returns the error that ended the session, if any
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.collector != nil {
		cmds = append(cmds, startCollector(m.collector), waitForStatus(m.collector.StatusChan()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 3
		verticalMargin := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}

		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewport()

	case tickMsg:
		m.updateViewport()
		cmds = append(cmds, tick())

	case statusMsg:
		m.status = string(msg)
		if m.collector != nil {
			cmds = append(cmds, waitForStatus(m.collector.StatusChan()))
		}

	case errMsg:
		m.err = msg
		m.logger.Error("collector failed", zap.Error(msg))
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.collector != nil {
				m.collector.Stop()
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Order):
			m.prefs.NewestFirst = !m.prefs.NewestFirst
		case key.Matches(msg, keys.Grow):
			m.resize(m.trace.MaxSize() * 2)
		case key.Matches(msg, keys.Shrink):
			m.resize(max(1, m.trace.MaxSize()/2))
		case key.Matches(msg, keys.RemoveOne):
			if p, err := m.trace.Remove(); err != nil {
				m.message = err.Error()
			} else {
				m.message = "removed " + p.String()
			}
		case key.Matches(msg, keys.Drain):
			m.message = fmt.Sprintf("drained %d samples", len(m.trace.Drain()))
		case key.Matches(msg, keys.Pause):
			m.togglePause()
		case key.Matches(msg, keys.Window):
			if m.prefs.Window <= 0 {
				m.message = "no window set (--window)"
			} else {
				m.windowOn = !m.windowOn
			}
		case key.Matches(msg, keys.Copy):
			if err := copyPoints(m.visiblePoints()); err != nil {
				m.message = "copy failed: " + err.Error()
			} else {
				m.message = "copied to clipboard"
			}
		}
		m.updateViewport()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	mode := "appending"
	if m.trace.Replacing() {
		mode = "replacing"
	}
	title := fmt.Sprintf("tracedog - %s [%s]", m.trace.Name(), mode)
	if m.status != "" {
		title += " [" + m.status + "]"
	}
	header := headerStyle.Width(m.width).Render(title)

	snap := m.trace.Snapshot()
	stats := fmt.Sprintf("%d/%d samples | evicted %d", len(snap.Points), snap.Capacity, snap.Evictions)
	if snap.Pending > 0 {
		stats += " | " + pendingStyle.Render(fmt.Sprintf("pending %d", snap.Pending))
	}
	if m.windowOn {
		stats += fmt.Sprintf(" | x %s..%s", formatValue(m.lastRange[0]), formatValue(m.lastRange[1]))
	}
	if m.message != "" {
		stats += " | " + messageStyle.Render(m.message)
	}
	footer := footerStyle.Width(m.width).Render(stats + "\n" + m.help.View(keys))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		footer,
	)
}

func (m *Model) resize(capacity int) {
	if err := m.trace.SetMaxSize(capacity); err != nil {
		m.message = err.Error()
		return
	}
	m.prefs.Capacity = capacity
	m.message = fmt.Sprintf("capacity %d", capacity)
}

func (m *Model) togglePause() {
	if m.collector == nil {
		m.message = "no live source"
		return
	}
	if m.collector.Running() {
		if err := m.collector.Stop(); err != nil {
			m.message = err.Error()
		}
		return
	}
	if err := m.collector.Start(); err != nil {
		m.message = err.Error()
	}
}

// visiblePoints returns the points currently selected for display, oldest first
func (m *Model) visiblePoints() []trace.Point {
	if m.windowOn {
		points, lo, hi := m.trace.Visible(trace.HighestValues{Window: m.prefs.Window})
		m.lastRange = [2]float64{lo, hi}
		return points
	}
	return m.trace.Points()
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var points []trace.Point
	pending := 0
	if m.windowOn {
		points = m.visiblePoints()
	} else {
		snap := m.trace.Snapshot()
		points, pending = snap.Points, snap.Pending
	}

	lines := make([]string, len(points))
	for i, p := range points {
		var prev float64
		if i > 0 {
			prev = points[i-1].Y
		}
		row := FormatRow(i, p, TrendColor(prev, p.Y, i > 0), m.prefs.ShowIndex)
		if i < pending {
			row = pendingStyle.Render("•") + row
		} else {
			row = " " + row
		}
		if m.prefs.NewestFirst {
			lines[len(points)-1-i] = row
		} else {
			lines[i] = row
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	if m.prefs.NewestFirst {
		m.viewport.GotoTop()
	} else {
		m.viewport.GotoBottom()
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func startCollector(c Collector) tea.Cmd {
	return func() tea.Msg {
		if err := c.Start(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func waitForStatus(statusChan <-chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-statusChan
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}
