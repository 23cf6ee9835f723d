// Package statsui provides the Bubble Tea history interface.
package statsui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/stats"
	"github.com/verte-zerg/stepcost/internal/store"
)

const (
	tabOverview = iota
	tabKeyTable
	tabKeyCurves
	tabHands
)

var tabNames = []string{"Overview", "Key Table", "Key Curves", "Hands"}

// Model implements the Bubble Tea history UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	err    string

	activeTab int
	viewports []viewport.Model
	keyTable  table.Model

	width  int
	height int

	filter filterForm
	picker keyPicker
}

// NewModel loads the history matching cfg.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:     st,
		cfg:       cfg,
		viewports: make([]viewport.Model, len(tabNames)),
		keyTable:  newKeyTable(),
		filter:    newFilterForm(),
		picker:    newKeyPicker(cfg.Keys),
	}
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.renderTabs()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.filter.open {
		cfg, applied, cmd := m.filter.update(msg, m.cfg.Keys)
		if applied {
			m.cfg = cfg
			m.refresh()
		}
		return m, cmd
	}
	if m.picker.open {
		applied, cmd := m.picker.update(msg, m.report.KeyAggsAll)
		if applied {
			m.picker.load(context.Background(), m.store, m.report.Sessions)
			m.renderTabs()
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.switchTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.switchTab(1)
		return m, tea.ClearScreen
	case "=":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.refresh()
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.refresh()
	case "/":
		return m, m.filter.start(m.cfg)
	case "enter":
		if m.activeTab == tabKeyCurves {
			return m, m.picker.start()
		}
	case "g", "home":
		if m.activeTab == tabKeyTable {
			m.keyTable.GotoTop()
		} else {
			m.viewports[m.activeTab].GotoTop()
		}
	case "G", "end":
		if m.activeTab == tabKeyTable {
			m.keyTable.GotoBottom()
		} else {
			m.viewports[m.activeTab].GotoBottom()
		}
	default:
		var cmd tea.Cmd
		if m.activeTab == tabKeyTable {
			m.keyTable, cmd = m.keyTable.Update(msg)
		} else {
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picker.open {
		return fit(m.picker.modal(m.width, m.height), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.heights()
	header := m.renderNav() + "\n" + headerStyle.Render(truncate(filterSummary(m.cfg), m.width))
	return strings.Join([]string{
		fit(header, m.width, headerHeight),
		fit(m.renderBody(), m.width, bodyHeight),
		fit(m.renderFooter(), m.width, footerHeight),
	}, "\n")
}

func (m *Model) heights() (header, body, footer int) {
	header = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footer = 1
	if !m.filter.open && m.err != "" {
		footer++
	}
	return header, max(1, m.height-header-footer), footer
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = body
	}
	m.keyTable.SetWidth(m.width)
	// The header border takes one line on top of the rows.
	m.keyTable.SetHeight(max(1, body-1))
	m.filter.resize(m.width)
	m.picker.resize(m.width)
}

func (m *Model) switchTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(tabNames)) % len(tabNames)
	if m.activeTab == tabKeyTable {
		m.keyTable.Focus()
	} else {
		m.keyTable.Blur()
	}
}

func (m *Model) refresh() {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, m.store, m.cfg)
	if err != nil {
		m.err = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.err = ""
	m.report = report
	m.picker.follow(report.KeyAggsAll)
	m.picker.load(ctx, m.store, report.Sessions)
	m.keyTable.SetRows(buildKeyTableRows(report.Sessions, report.KeyAggsWindow))
	m.resize()
	m.renderTabs()
}

func (m *Model) renderTabs() {
	if m.err != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	sessions, window := m.report.Sessions, m.cfg.CurveWindow
	m.viewports[tabOverview].SetContent(renderOverview(sessions, window, width))
	m.viewports[tabKeyCurves].SetContent(renderKeyCurves(sessions, &m.picker, window, width))
	m.viewports[tabHands].SetContent(renderHands(sessions, window, width))
}

func (m *Model) renderNav() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.filter.open {
		return m.filter.view()
	}
	if m.activeTab != tabKeyTable {
		return m.viewports[m.activeTab].View()
	}
	switch {
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	case len(m.report.KeyAggsAll) == 0:
		return "No key stats found."
	}
	return tableMutedStyle.Render(m.keyTable.View())
}

func (m *Model) renderFooter() string {
	if m.filter.open {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabKeyCurves {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit keys: enter  Window: -/=  Settings: /  Quit: q"
	}
	footer := headerStyle.Render(help)
	if m.err != "" {
		footer += "\n" + errorStyle.Render(m.err)
	}
	return footer
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	switch {
	case n <= 5:
		return 1
	case n%5 == 0:
		return n - 5
	default:
		return n / 5 * 5
	}
}
