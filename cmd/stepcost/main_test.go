package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/stepcost/internal/config"
	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/layoutfile"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/score"
)

func TestConfigTemplateKeysAreKnown(t *testing.T) {
	commented := regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)
	uncommented := commented.ReplaceAllString(defaultConfigTemplate(), "$1")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(uncommented), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not decode: %v\n%s", err, uncommented)
	}
	if cfg.Scoring.MousePosition == nil || *cfg.Scoring.MousePosition != defaultMousePosition {
		t.Fatalf("expected mouse position from template, got %v", cfg.Scoring.MousePosition)
	}
	if cfg.Simulate.Words == nil || *cfg.Simulate.Words != defaultWords {
		t.Fatalf("expected words from template")
	}
	if cfg.Stats.CurveWindow == nil || *cfg.Stats.CurveWindow != defaultCurveWindow {
		t.Fatalf("expected curve window from template")
	}
}

func TestValidateScoring(t *testing.T) {
	ok := model.ScoringConfig{PadWidth: 18, PadHeight: 18, MouseWidth: 5.6, MouseHeight: 10.2, MousePosition: "left"}
	if err := validateScoring(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := ok
	bad.MousePosition = "above"
	if err := validateScoring(bad); err == nil {
		t.Fatalf("expected error for unknown position")
	}
	bad = ok
	bad.MouseWidth = 20
	if err := validateScoring(bad); err == nil {
		t.Fatalf("expected error for oversized mouse")
	}
	bad = ok
	bad.PadHeight = 0
	if err := validateScoring(bad); err == nil {
		t.Fatalf("expected error for empty pad")
	}
	bad = ok
	bad.MouseWidth = 0
	if err := validateScoring(bad); err == nil {
		t.Fatalf("expected error for zero mouse width")
	}
	bad = ok
	bad.MouseHeight = 0
	if err := validateScoring(bad); err == nil {
		t.Fatalf("expected error for zero mouse height")
	}
}

func TestValidateSimulate(t *testing.T) {
	cfg := model.SimulateConfig{Words: 10, WPM: 40, CapsPct: 0.1, PunctPct: 0.1, PunctSet: ".,"}
	if err := validateSimulate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.PunctSet = "§"
	if err := validateSimulate(cfg); err == nil {
		t.Fatalf("expected error for untypeable punctuation")
	}
	cfg.PunctSet = "."
	cfg.WPM = 0
	if err := validateSimulate(cfg); err == nil {
		t.Fatalf("expected error for zero wpm")
	}
}

func TestSimulateCommandScoresText(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Cleanup(func() { simulateText = "" })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"simulate", "--text", "hello world", "--seed", "1"})
	if err := root.Execute(); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out.String(), "Key presses") {
		t.Fatalf("expected session summary, got %q", out.String())
	}
}

func TestNewKeyboardNatural(t *testing.T) {
	cfg := model.ScoringConfig{
		LayoutPath:    layout.NaturalName,
		PadWidth:      18,
		PadHeight:     18,
		MouseWidth:    5.6,
		MouseHeight:   10.2,
		MousePosition: "right",
	}
	kb, err := newKeyboard(cfg)
	if err != nil {
		t.Fatalf("new keyboard: %v", err)
	}
	if kb.Layout().Name() != layout.NaturalName {
		t.Fatalf("expected natural layout, got %s", kb.Layout().Name())
	}
	if _, err := kb.ReachForMouseTransitionCost(); err != nil {
		t.Fatalf("expected mouse to be attached: %v", err)
	}
}

func TestSessionName(t *testing.T) {
	if got := sessionName("", "/tmp/monday.jsonl"); got != "monday" {
		t.Fatalf("expected monday, got %q", got)
	}
	if got := sessionName("custom", "/tmp/monday.jsonl"); got != "custom" {
		t.Fatalf("expected custom, got %q", got)
	}
}

func TestExportFormat(t *testing.T) {
	cases := []struct {
		format, out string
		want        layoutfile.Format
	}{
		{"", "", layoutfile.YAML},
		{"", "kb.toml", layoutfile.TOML},
		{"json", "kb.toml", layoutfile.JSON},
	}
	for _, tc := range cases {
		got, err := exportFormat(tc.format, tc.out)
		if err != nil {
			t.Fatalf("export format %q/%q: %v", tc.format, tc.out, err)
		}
		if got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
	if _, err := exportFormat("", "kb.txt"); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

func TestSplitKeys(t *testing.T) {
	got := splitKeys("A, Space 1")
	if strings.Join(got, "|") != "A|Space|D1" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestRenderPerEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []event.Event{
		event.Key("OemPeriod", false, at, at),
		event.Wheel(3, at, at),
	}
	results := []score.Result{
		{Index: 0, Kind: event.KeyDown, Score: 1.5},
		{Index: 1, Kind: event.MouseWheel, Score: 2, Transition: 1},
	}
	var buf bytes.Buffer
	if err := renderPerEvent(&buf, events, results); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"key-down", ".", "1.500", "mouse-wheel", "(transition 1.000)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderLayoutNatural(t *testing.T) {
	var buf bytes.Buffer
	if err := renderLayout(&buf, layout.Natural()); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"natural", "home-left", "[home left]", "duplicate Enter"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
