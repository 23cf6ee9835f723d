package device

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/stepcost/internal/fitts"
	"github.com/verte-zerg/stepcost/internal/geom"
	"github.com/verte-zerg/stepcost/internal/layout"
)

var stdKey = geom.Size{Width: 1.8, Height: 1.8}

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	b := layout.NewBuilder("test", geom.Size{Width: 40, Height: 20}, stdKey)
	b.Section("home-left", geom.Pt(0, 0), stdKey, layout.Left).Keys("A")
	b.Section("home-right", geom.Pt(10, 0), stdKey, layout.Right).Keys("J", "Enter")
	b.Section("space", geom.Pt(5, 3), stdKey, layout.Both).Keys("Space")
	b.Section("thumb", geom.Pt(5, 8), stdKey, layout.Both).Keys("Thumb")
	b.Section("far-left", geom.Pt(0, 20), stdKey, layout.Left).Keys("Q")
	b.Section("numpad", geom.Pt(30, 0), stdKey, layout.Right).Keys("Enter", "N1")
	b.HomeRows("home-left", "home-right").Alias("Return", "Enter")
	b.Duplicate(layout.DuplicateRule{Name: "Enter", Preferred: "numpad", Default: "home-right", NearSections: []string{"numpad"}})
	l, err := b.Build()
	require.NoError(t, err)
	return l
}

func stdWidth() float64 {
	return fitts.TargetApproachWidth(stdKey.Width, stdKey.Height)
}

func score(t *testing.T, distance, width float64) float64 {
	t.Helper()
	s, err := fitts.TargetPressScore(distance, width)
	require.NoError(t, err)
	return s
}

func pressKey(t *testing.T, k *Keyboard, key string) float64 {
	t.Helper()
	c, err := k.KeyPressCost(key)
	require.NoError(t, err)
	return c
}

func TestAlternatingHandsScenario(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	repeat, err := fitts.CostOfRepeatHit(stdWidth())
	require.NoError(t, err)

	assert.InDelta(t, score(t, MinKeyDistance, stdWidth()), pressKey(t, k, "A"), 1e-12)
	assert.InDelta(t, score(t, MinKeyDistance, stdWidth()), pressKey(t, k, "J"), 1e-12)
	assert.InDelta(t, repeat, pressKey(t, k, "A"), 1e-12)
}

func TestRepeatAlwaysUsesRepeatCost(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	repeat, err := fitts.CostOfRepeatHit(stdWidth())
	require.NoError(t, err)
	pressKey(t, k, "Q")
	for i := 0; i < 3; i++ {
		assert.InDelta(t, repeat, pressKey(t, k, "Q"), 1e-12)
	}
}

func TestSpaceFirstUsesHomeRowReach(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	assert.InDelta(t, score(t, SpaceReachDistance, stdWidth()), pressKey(t, k, "Space"), 1e-12)
}

func TestSpaceAwayFromHomeRows(t *testing.T) {
	l := testLayout(t)
	k := NewKeyboard(l, Options{})
	pressKey(t, k, "Q")
	pressKey(t, k, "N1")
	// Neither hand is home: distance comes from the nearest hand.
	want := score(t, geom.Distance(geom.Pt(0, 20), geom.Pt(5, 3)), stdWidth())
	assert.InDelta(t, want, pressKey(t, k, "Space"), 1e-12)
}

func TestAmbidextrousTargetTakesMinimumOfThree(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	pressKey(t, k, "Q")
	pressKey(t, k, "J")
	right := geom.Distance(geom.Pt(10, 0), geom.Pt(5, 8))
	assert.InDelta(t, score(t, right, stdWidth()), pressKey(t, k, "Thumb"), 1e-12)

	k.PrepareForAnalysis()
	pressKey(t, k, "Q")
	pressKey(t, k, "J")
	pressKey(t, k, "Space")
	assert.InDelta(t, score(t, 5, stdWidth()), pressKey(t, k, "Thumb"), 1e-12)
}

func TestOneHandedTargetConsidersAmbidextrousHistory(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	pressKey(t, k, "Q")
	pressKey(t, k, "J")
	pressKey(t, k, "Space")
	want := score(t, geom.Distance(geom.Pt(5, 3), geom.Pt(0, 0)), stdWidth())
	assert.InDelta(t, want, pressKey(t, k, "A"), 1e-12)
}

func TestAmbidextrousForgottenAfterBothHands(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	pressKey(t, k, "Space")
	pressKey(t, k, "A")
	assert.Equal(t, "Space", k.Snapshot().LastAmbi)
	pressKey(t, k, "J")
	assert.Equal(t, "", k.Snapshot().LastAmbi)
	assert.Equal(t, "A", k.Snapshot().LastLeft)
	assert.Equal(t, "J", k.Snapshot().LastRight)
}

func TestAmbidextrousKeptWhileOtherHandIdle(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	pressKey(t, k, "J")
	pressKey(t, k, "Space")
	pressKey(t, k, "J")
	assert.Equal(t, "Space", k.Snapshot().LastAmbi)
	pressKey(t, k, "A")
	// The right hand pressed after the space bar, then the left hand did too.
	assert.Equal(t, "", k.Snapshot().LastAmbi)
}

func TestDuplicateEnterFollowsRightHand(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	near := score(t, MinKeyDistance, stdWidth())
	pressKey(t, k, "J")
	assert.InDelta(t, near, pressKey(t, k, "Enter"), 1e-12)
	pressKey(t, k, "N1")
	assert.InDelta(t, near, pressKey(t, k, "Return"), 1e-12)
}

func TestUnknownKeyTolerant(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	k := NewKeyboard(testLayout(t), Options{Logger: logger})
	for i := 0; i < 2; i++ {
		c, err := k.KeyPressCost("VolumeUp")
		require.NoError(t, err)
		assert.Equal(t, 0.0, c)
	}
	assert.Equal(t, map[string]int{"VolumeUp": 2}, k.LookupMisses())
	if !strings.Contains(buf.String(), "VolumeUp") {
		t.Fatalf("expected miss to be logged, got %q", buf.String())
	}
	k.PrepareForAnalysis()
	assert.Empty(t, k.LookupMisses())
}

func TestUnknownKeyStrict(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{StrictKeys: true})
	_, err := k.KeyPressCost("VolumeUp")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestPrepareForAnalysisIsDeterministic(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	k.AttachPointingDevice(layout.DefaultMousePad(), layout.Right)
	run := func() float64 {
		k.PrepareForAnalysis()
		total := 0.0
		for _, key := range []string{"A", "Space", "J", "Enter", "Q", "Thumb", "A", "N1"} {
			total += pressKey(t, k, key)
		}
		c, err := k.ReachForMouseTransitionCost()
		require.NoError(t, err)
		return total + c
	}
	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestTransitionsRequirePointingDevice(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	if _, err := k.ReachForMouseTransitionCost(); !errors.Is(err, ErrPointingDeviceUnset) {
		t.Fatalf("expected ErrPointingDeviceUnset, got %v", err)
	}
	if _, err := k.MouseToKeyboardTransitionCost("J"); !errors.Is(err, ErrPointingDeviceUnset) {
		t.Fatalf("expected ErrPointingDeviceUnset, got %v", err)
	}
	k.AttachPointingDevice(&layout.MousePad{Size: geom.Size{Width: 18, Height: 18}}, layout.Right)
	if _, err := k.ReachForMouseTransitionCost(); !errors.Is(err, ErrMouseUnset) {
		t.Fatalf("expected ErrMouseUnset, got %v", err)
	}
}

func TestReachForMouseByPadPosition(t *testing.T) {
	l := testLayout(t)
	mouseWidth := 5.6
	cases := []struct {
		pos  layout.Handedness
		from geom.Point
		pad  geom.Point
	}{
		{layout.Right, geom.Pt(10, 0), geom.Pt(9+40, 9)},
		{layout.Left, geom.Pt(0, 0), geom.Pt(9-18, 9)},
		{layout.Both, geom.Pt(10, 0), geom.Pt(9+5, 9+20)},
	}
	for _, tc := range cases {
		k := NewKeyboard(l, Options{})
		k.AttachPointingDevice(layout.DefaultMousePad(), tc.pos)
		got, err := k.ReachForMouseTransitionCost()
		require.NoError(t, err)
		assert.InDelta(t, score(t, geom.Distance(tc.from, tc.pad), mouseWidth), got, 1e-12, "pad %s", tc.pos)
		assert.Equal(t, ActionMouse, k.LastActionType())
	}
}

func TestReachForMouseUsesLastSameSideSection(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	k.AttachPointingDevice(layout.DefaultMousePad(), layout.Right)
	pressKey(t, k, "N1")
	got, err := k.ReachForMouseTransitionCost()
	require.NoError(t, err)
	assert.InDelta(t, score(t, geom.Distance(geom.Pt(30, 0), geom.Pt(49, 9)), 5.6), got, 1e-12)
}

func TestMouseToKeyboardTransition(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	k.AttachPointingDevice(layout.DefaultMousePad(), layout.Right)
	k.SetLastActionType(ActionMouse)

	c, err := k.MouseToKeyboardTransitionCost("A")
	require.NoError(t, err)
	assert.Equal(t, 0.0, c)
	assert.Equal(t, ActionMouse, k.LastActionType())

	c, err = k.MouseToKeyboardTransitionCost("J")
	require.NoError(t, err)
	assert.InDelta(t, score(t, geom.Distance(geom.Pt(10, 0), geom.Pt(49, 9)), stdWidth()), c, 1e-12)
	assert.Equal(t, ActionKeyboard, k.LastActionType())

	c, err = k.MouseToKeyboardTransitionCost("Nope")
	require.NoError(t, err)
	assert.Equal(t, 0.0, c)
}

func TestKeyPressMarksKeyboardOnMouseHand(t *testing.T) {
	k := NewKeyboard(testLayout(t), Options{})
	k.AttachPointingDevice(layout.DefaultMousePad(), layout.Right)
	k.SetLastActionType(ActionMouse)
	pressKey(t, k, "A")
	assert.Equal(t, ActionMouse, k.LastActionType())
	pressKey(t, k, "J")
	assert.Equal(t, ActionKeyboard, k.LastActionType())
}

func TestNaturalKeyboardFirstPresses(t *testing.T) {
	l := layout.Natural()
	k := NewKeyboard(l, Options{})
	// F1 is priced from the left home row center.
	idx, _ := l.Lookup("F1", -1)
	fn := l.SectionOf(idx)
	home := l.Section(l.HomeLeft())
	want := score(t, math.Max(geom.Distance(home.Center, fn.Center), MinKeyDistance), l.Target(idx).EffectiveApproachWidth())
	assert.InDelta(t, want, pressKey(t, k, "F1"), 1e-12)
}

func TestMissedKeysOrder(t *testing.T) {
	got := MissedKeys(map[string]int{"b": 1, "a": 1, "c": 3})
	assert.Equal(t, []string{"c", "a", "b"}, got)
}
