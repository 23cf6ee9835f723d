package statsui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/stats"
)

const plotHeight = 10

var (
	border   = lipgloss.Color("#4A4A4A")
	accent   = lipgloss.Color("#C89A3A")
	navStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true)
	activeNavStyle   = navStyle.Foreground(lipgloss.Color("#F0F0F0")).Bold(true).BorderForeground(accent)
	inactiveNavStyle = navStyle.Foreground(lipgloss.Color("#B0B0B0")).BorderForeground(border)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(border)
	cardTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(accent).Padding(1, 2)
)

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	return summaryCards(sessions, width) + "\n\n" + plot(func(buf *bytes.Buffer) error {
		return stats.RenderCurvesWithSize(buf, sessions, window, width, plotHeight, true)
	})
}

func summaryCards(sessions []model.SessionAggregate, width int) string {
	var rate, perKey, force float64
	lowest := stats.SessionRate(sessions[0])
	misses := 0
	for _, s := range sessions {
		r := stats.SessionRate(s)
		rate += r
		perKey += stats.SessionCostPerKey(s)
		force += s.ForceTime
		lowest = min(lowest, r)
		misses += s.LookupMisses
	}
	n := float64(len(sessions))
	cards := []string{
		card("Sessions", fmt.Sprintf("%d", len(sessions))),
		card("Avg Score/min", fmt.Sprintf("%.1f", rate/n)),
		card("Lowest Score/min", fmt.Sprintf("%.1f", lowest)),
		card("Avg Cost/key", fmt.Sprintf("%.3f", perKey/n)),
		card("Force-time", fmt.Sprintf("%.1f N*s", force)),
	}
	if misses > 0 {
		cards = append(cards, card("Unknown keys", fmt.Sprintf("%d", misses)))
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
	)
}

func card(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderHands(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var left, right int
	var share float64
	for _, s := range sessions {
		left += s.LeftPresses
		right += s.RightPresses
		share += stats.TransitionShare(s)
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Left / Right", fmt.Sprintf("%d / %d", left, right)),
		card("Disbalance", fmt.Sprintf("%.1f%%", stats.HandDisbalance(left, right))),
		card("Avg Transition", fmt.Sprintf("%.1f%%", share/float64(len(sessions)))),
	)
	return cards + "\n\n" + plot(func(buf *bytes.Buffer) error {
		return stats.RenderHandCurves(buf, sessions, window, width, plotHeight, true)
	})
}

func renderKeyCurves(sessions []model.SessionAggregate, p *keyPicker, window, width int) string {
	switch {
	case len(sessions) == 0:
		return "No sessions found."
	case p.err != "":
		return "Failed to load key curves: " + p.err
	case len(p.keys) == 0:
		return "No keys selected. Press Enter to set keys."
	}
	labels := make([]string, len(p.keys))
	for i, k := range p.keys {
		labels[i] = layout.Label(k)
	}
	return headerStyle.Render("Keys: "+strings.Join(labels, ", ")) + "\n" + plot(func(buf *bytes.Buffer) error {
		return stats.RenderKeyCurvesWithSize(buf, sessions, p.perSession, p.keys, window, width, plotHeight, true)
	})
}

func plot(render func(*bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newKeyTable() table.Model {
	t := table.New(table.WithColumns([]table.Column{
		{Title: "Key", Width: 14},
		{Title: "Avg Cost", Width: 9},
		{Title: "Presses", Width: 8},
		{Title: "Total", Width: 9},
		{Title: "Unknown", Width: 8},
	}))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(border).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t.SetStyles(styles)
	return t
}

// buildKeyTableRows lists keys costliest first.
func buildKeyTableRows(sessions []model.SessionAggregate, aggs []model.KeyAggregate) []table.Row {
	if len(sessions) == 0 {
		return nil
	}
	sorted := append([]model.KeyAggregate(nil), aggs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai := stats.AverageCost(sorted[i].Presses, sorted[i].CostSum)
		aj := stats.AverageCost(sorted[j].Presses, sorted[j].CostSum)
		if ai == aj {
			return sorted[i].Key < sorted[j].Key
		}
		return ai > aj
	})
	rows := make([]table.Row, len(sorted))
	for i, agg := range sorted {
		rows[i] = table.Row{
			layout.Label(agg.Key),
			fmt.Sprintf("%.3f", stats.AverageCost(agg.Presses, agg.CostSum)),
			fmt.Sprintf("%d", agg.Presses),
			fmt.Sprintf("%.2f", agg.CostSum),
			fmt.Sprintf("%d", agg.Missed),
		}
	}
	return rows
}

// fit pads or clips s to exactly width x height cells.
func fit(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Height(height).MaxHeight(height).Render(s)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
