package synth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/stepcost/internal/event"
)

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta"}
	a := New(42).Generate(words, 20, 0.3, 0.3, []rune(".,"))
	b := New(42).Generate(words, 20, 0.3, 0.3, []rune(".,"))
	if strings.Join(a, " ") != strings.Join(b, " ") {
		t.Fatalf("expected same output for same seed:\n%v\n%v", a, b)
	}
	if len(a) != 20 {
		t.Fatalf("expected 20 words, got %d", len(a))
	}
}

func TestGenerateWithoutCapsOrPunct(t *testing.T) {
	words := []string{"one", "two"}
	for _, w := range New(1).Generate(words, 50, 0, 0, []rune(".")) {
		if w != "one" && w != "two" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateWeightedPrefersCostlyWords(t *testing.T) {
	words := []string{"zzzz", "aaaa"}
	costly := map[string]struct{}{"Z": {}}
	got := New(7).GenerateWeighted(words, 400, 0, 0, nil, costly, 10)
	counts := map[string]int{}
	for _, w := range got {
		counts[w]++
	}
	// weights are 41 to 1
	if counts["zzzz"] < 300 {
		t.Fatalf("expected costly word to dominate, got %v", counts)
	}
}

func TestGenerateWeightedWithoutCostlyKeys(t *testing.T) {
	words := []string{"one"}
	got := New(3).GenerateWeighted(words, 3, 0, 0, nil, nil, 5)
	if strings.Join(got, " ") != "one one one" {
		t.Fatalf("unexpected words %v", got)
	}
}

func TestKeyFor(t *testing.T) {
	cases := []struct {
		r     rune
		key   string
		shift bool
	}{
		{'a', "A", false},
		{'Q', "Q", true},
		{'7', "D7", false},
		{'!', "D1", true},
		{')', "D0", true},
		{' ', "Space", false},
		{'?', "OemQuestion", true},
		{';', "Oem1", false},
		{'"', "Oem7", true},
	}
	for _, tc := range cases {
		got, ok := KeyFor(tc.r)
		if !ok {
			t.Fatalf("expected key for %q", tc.r)
		}
		if got.Key != tc.key || got.Shift != tc.shift {
			t.Fatalf("%q: expected %s/%v, got %s/%v", tc.r, tc.key, tc.shift, got.Key, got.Shift)
		}
	}
	if _, ok := KeyFor('é'); ok {
		t.Fatalf("expected no key for é")
	}
}

func TestTypeable(t *testing.T) {
	if !Typeable("don't") {
		t.Fatalf("expected apostrophe word to be typeable")
	}
	if Typeable("café") || Typeable("") {
		t.Fatalf("expected untypeable words to be rejected")
	}
}

func TestTypeTiming(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	typist := Typist{WPM: 60}
	require.Equal(t, 200*time.Millisecond, typist.Interval())

	events, err := typist.Type("ab c", start)
	require.NoError(t, err)
	require.Len(t, events, 4)
	keys := make([]string, 0, len(events))
	for i, e := range events {
		keys = append(keys, e.Key)
		assert.Equal(t, event.KeyDown, e.Kind)
		assert.Equal(t, start.Add(time.Duration(i)*200*time.Millisecond), e.Start)
		assert.Equal(t, 100*time.Millisecond, e.Duration())
	}
	assert.Equal(t, "A B Space C", strings.Join(keys, " "))
}

func TestTypeShiftUsesOppositeHand(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	events, err := Typist{WPM: 60}.Type("Aj:", start)
	require.NoError(t, err)
	require.Len(t, events, 5)

	// A is on the left half, so the right shift is used.
	assert.Equal(t, "RShiftKey", events[0].Key)
	assert.True(t, events[0].Shift)
	assert.Equal(t, "A", events[1].Key)
	assert.True(t, events[1].Shift)
	assert.True(t, events[1].Start.After(events[0].Start))
	assert.Equal(t, "J", events[2].Key)
	assert.False(t, events[2].Shift)
	assert.Equal(t, "LShiftKey", events[3].Key)
	assert.Equal(t, "Oem1", events[4].Key)

	for i := 1; i < len(events); i++ {
		if events[i].Start.Before(events[i-1].Start) {
			t.Fatalf("event %d starts before its predecessor", i)
		}
	}
}

func TestTypeRejectsUntypeable(t *testing.T) {
	_, err := Typist{}.Type("naïve", time.Now())
	if !errors.Is(err, ErrUntypeable) {
		t.Fatalf("expected ErrUntypeable, got %v", err)
	}
}
