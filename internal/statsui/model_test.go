package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/store"
)

func TestParseKeys(t *testing.T) {
	got := parseKeys("A, Space 7,,OemPeriod A")
	if strings.Join(got, "|") != "A|Space|D7|OemPeriod" {
		t.Fatalf("unexpected keys %v", got)
	}
	if len(parseKeys("  ")) != 0 {
		t.Fatalf("expected no keys for blank input")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d): expected %d, got %d", tc.in, tc.next, got)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d): expected %d, got %d", tc.in, tc.prev, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter(filterValues{"natural", "2024-05-01", "3", "7"}, "A,B")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Layout != "natural" || cfg.Last != 3 || cfg.CurveWindow != 7 || cfg.Keys != "A,B" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Since == nil || cfg.Since.Day() != 1 {
		t.Fatalf("expected since date, got %v", cfg.Since)
	}
	if _, err := parseFilter(filterValues{fieldSince: "yesterday"}, ""); err == nil {
		t.Fatalf("expected error for bad date")
	}
	if _, err := parseFilter(filterValues{fieldWindow: "0"}, ""); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestKeyTableRowsCostliestFirst(t *testing.T) {
	sessions := []model.SessionAggregate{{SessionID: 1}}
	rows := buildKeyTableRows(sessions, []model.KeyAggregate{
		{Key: "A", Presses: 4, CostSum: 4},
		{Key: "OemPeriod", Presses: 2, CostSum: 5},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "." || rows[0][1] != "2.500" {
		t.Fatalf("expected period first, got %v", rows[0])
	}
	if len(buildKeyTableRows(nil, []model.KeyAggregate{{Key: "A"}})) != 0 {
		t.Fatalf("expected no rows without sessions")
	}
}

func TestModelRendersHistory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "stepcost.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := st.InsertSession(context.Background(), model.SessionStats{
			StartedAt:   at.Add(time.Duration(i) * time.Hour),
			EndedAt:     at.Add(time.Duration(i)*time.Hour + time.Minute),
			Layout:      "natural",
			Events:      2,
			KeyPresses:  2,
			Score:       float64(10 + i),
			SpanMs:      60000,
			LeftPresses: 2,
		}, []model.KeyStats{{Key: "A", Presses: 2, CostSum: 2.5}})
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	m := NewModel(st, model.StatsConfig{CurveWindow: 2})
	if m.err != "" {
		t.Fatalf("unexpected error: %s", m.err)
	}
	if len(m.report.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(m.report.Sessions))
	}
	if strings.Join(m.picker.keys, ",") != "A" {
		t.Fatalf("expected default key selection, got %v", m.picker.keys)
	}
	if m.picker.perSession[m.report.Sessions[0].SessionID]["A"].Presses != 2 {
		t.Fatalf("expected per-session key stats, got %v", m.picker.perSession)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "Sessions") {
		t.Fatalf("overview missing from view")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabKeyTable {
		t.Fatalf("expected key table tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Avg Cost") {
		t.Fatalf("key table missing from view")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabHands {
		t.Fatalf("expected tabs to wrap to hands, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Disbalance") {
		t.Fatalf("hands tab missing from view")
	}
}

func TestFilterFormApplies(t *testing.T) {
	f := newFilterForm()
	f.start(model.StatsConfig{Layout: "natural", CurveWindow: 4})
	if f.values()[fieldWindow] != "4" || f.focus != fieldLayout {
		t.Fatalf("unexpected form state %v focus=%d", f.values(), f.focus)
	}
	f.update(tea.KeyMsg{Type: tea.KeyShiftTab}, "")
	if f.focus != fieldWindow {
		t.Fatalf("expected focus to wrap to the window field, got %d", f.focus)
	}
	cfg, applied, _ := f.update(tea.KeyMsg{Type: tea.KeyEnter}, "A")
	if !applied || f.open {
		t.Fatalf("expected form to apply and close")
	}
	if cfg.Layout != "natural" || cfg.CurveWindow != 4 || cfg.Keys != "A" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestFilterSummary(t *testing.T) {
	got := filterSummary(model.StatsConfig{Last: 3, CurveWindow: 5})
	if got != "Settings: layout=any  since=any  last=3  window=5" {
		t.Fatalf("unexpected summary %q", got)
	}
}
