// Package tui provides the Bubble Tea session viewer.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/score"
)

const pageStep = 10

// Row is one scored event.
type Row struct {
	Event  event.Event
	Result score.Result
}

// RowMsg appends a row to a live viewer.
type RowMsg Row

// Model implements the Bubble Tea session viewer.
type Model struct {
	title string
	rows  []Row
	live  bool

	width  int
	height int

	cursor      int
	total       float64
	transitions float64
}

var (
	cheapStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	costlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mouseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel returns a viewer over scored rows. A live viewer keeps the cursor
// on the newest row as RowMsg values arrive.
func NewModel(title string, rows []Row, live bool) *Model {
	m := &Model{title: title, live: live}
	for _, r := range rows {
		m.add(r)
	}
	m.cursor = max(0, len(m.rows)-1)
	if !live {
		m.cursor = 0
	}
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
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case RowMsg:
		atTail := m.cursor >= len(m.rows)-1
		m.add(Row(msg))
		if m.live && atTail {
			m.cursor = len(m.rows) - 1
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveCursor(-1)
		case "right", "l":
			m.moveCursor(1)
		case "up", "k", "pgup":
			m.moveCursor(-pageStep)
		case "down", "j", "pgdown":
			m.moveCursor(pageStep)
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(0, len(m.rows)-1)
		case "w":
			m.jumpWord(1)
		case "b":
			m.jumpWord(-1)
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.rows) == 0 {
		if m.live {
			return footerStyle.Render("Waiting for events...")
		}
		return footerStyle.Render("No events.")
	}
	cells := buildStyledCells(m.rows, m.cursor)
	if m.width == 0 || m.height == 0 {
		return renderStyledCells(cells)
	}
	contentWidth := max(1, int(float64(m.width)*0.70))
	wrapped := wrapStyledCells(cells, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	if m.title != "" {
		content = titleStyle.Render(m.title) + "\n\n" + content
	}
	footer := m.renderFooter()
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footerLines := lipgloss.Place(m.width, 2, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLines
}

func (m *Model) add(r Row) {
	m.rows = append(m.rows, r)
	m.total += r.Result.Score
	m.transitions += r.Result.Transition
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
}

func (m *Model) jumpWord(dir int) {
	words := findWords(m.rows)
	if len(words) == 0 {
		return
	}
	if dir > 0 {
		for _, w := range words {
			if w.start > m.cursor {
				m.cursor = w.start
				return
			}
		}
		return
	}
	for i := len(words) - 1; i >= 0; i-- {
		if words[i].start < m.cursor {
			m.cursor = words[i].start
			return
		}
	}
}

func (m *Model) renderFooter() string {
	if len(m.rows) == 0 {
		return ""
	}
	row := m.rows[m.cursor]
	segments := []string{
		fmt.Sprintf("Event %d/%d", m.cursor+1, len(m.rows)),
		describe(row),
		fmt.Sprintf("Score %.2f", row.Result.Score),
	}
	if row.Result.Transition > 0 {
		segments = append(segments, fmt.Sprintf("Transition %.2f", row.Result.Transition))
	}
	if w := wordForCursor(findWords(m.rows), m.cursor); w != nil && w.end-w.start > 1 {
		segments = append(segments, fmt.Sprintf("Word %.2f", wordCost(m.rows, w)))
	}
	status := fmt.Sprintf("Total %.2f · Transitions %.2f", m.total, m.transitions)
	help := "Move: left/right  Page: up/down  Word: w/b  Quit: q"
	return footerStyle.Render(strings.Join(segments, " · ") + "\n" + status + "  " + help)
}

func describe(r Row) string {
	e := r.Event
	switch e.Kind {
	case event.KeyDown:
		label := layout.Label(e.Key)
		if e.Shift {
			label = "Shift+" + label
		}
		return fmt.Sprintf("%s %s", e.Kind, label)
	case event.MouseDown:
		return fmt.Sprintf("%s at %.0f,%.0f (travel %.0f px)", e.Kind, e.Position.X, e.Position.Y, r.Result.Travel)
	case event.MouseMove:
		return fmt.Sprintf("%s %.0f px", e.Kind, e.PathLength())
	case event.MouseWheel:
		return fmt.Sprintf("%s %d", e.Kind, e.Detents)
	default:
		return e.Kind.String()
	}
}
