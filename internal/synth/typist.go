package synth

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/layout"
)

// ErrUntypeable is returned for characters with no key on a US keyboard.
var ErrUntypeable = errors.New("character cannot be typed")

const (
	leftShift  = "LShiftKey"
	rightShift = "RShiftKey"

	defaultWPM  = 40
	maxHoldTime = 100 * time.Millisecond
)

// Stroke is the key that produces a character and whether shift is held.
type Stroke struct {
	Key   string
	Shift bool
}

var punctStrokes = map[rune]Stroke{
	' ':  {Key: "Space"},
	'\n': {Key: "Enter"},
	'\t': {Key: "Tab"},
	'.':  {Key: "OemPeriod"},
	'>':  {Key: "OemPeriod", Shift: true},
	',':  {Key: "Oemcomma"},
	'<':  {Key: "Oemcomma", Shift: true},
	'/':  {Key: "OemQuestion"},
	'?':  {Key: "OemQuestion", Shift: true},
	'-':  {Key: "OemMinus"},
	'_':  {Key: "OemMinus", Shift: true},
	'=':  {Key: "Oemplus"},
	'+':  {Key: "Oemplus", Shift: true},
	'[':  {Key: "OemOpenBrackets"},
	'{':  {Key: "OemOpenBrackets", Shift: true},
	']':  {Key: "Oem6"},
	'}':  {Key: "Oem6", Shift: true},
	'\'': {Key: "Oem7"},
	'"':  {Key: "Oem7", Shift: true},
	'\\': {Key: "Oem5"},
	'|':  {Key: "Oem5", Shift: true},
	';':  {Key: "Oem1"},
	':':  {Key: "Oem1", Shift: true},
	'`':  {Key: "Oemtilde"},
	'~':  {Key: "Oemtilde", Shift: true},
}

// shifted digits in US order, starting from D1.
const shiftedDigits = "!@#$%^&*()"

// KeyFor maps a character to the US keyboard key that types it.
func KeyFor(r rune) (Stroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return Stroke{Key: string(r - 'a' + 'A')}, true
	case r >= 'A' && r <= 'Z':
		return Stroke{Key: string(r), Shift: true}, true
	case r >= '0' && r <= '9':
		return Stroke{Key: "D" + string(r)}, true
	}
	for i, c := range shiftedDigits {
		if c == r {
			return Stroke{Key: fmt.Sprintf("D%d", (i+1)%10), Shift: true}, true
		}
	}
	s, ok := punctStrokes[r]
	return s, ok
}

// Typeable reports whether every character of word has a key.
func Typeable(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if _, ok := KeyFor(r); !ok {
			return false
		}
	}
	return true
}

// Typist turns text into key-down events at a steady pace.
type Typist struct {
	// Layout decides which shift key is used; the natural keyboard when nil.
	Layout *layout.Layout
	WPM    float64
}

// Interval is the time between two characters, five characters per word.
func (t Typist) Interval() time.Duration {
	wpm := t.WPM
	if wpm <= 0 {
		wpm = defaultWPM
	}
	return time.Duration(float64(time.Minute) / (wpm * 5))
}

// Type returns the key-down events for text starting at start. A shifted
// character is preceded by the shift key of the opposite hand.
func (t Typist) Type(text string, start time.Time) ([]event.Event, error) {
	l := t.Layout
	if l == nil {
		l = layout.Natural()
	}
	interval := t.Interval()
	hold := min(interval/2, maxHoldTime)

	events := make([]event.Event, 0, len(text))
	at := start
	for pos, r := range text {
		stroke, ok := KeyFor(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q at byte %d", ErrUntypeable, r, pos)
		}
		keyAt := at
		if stroke.Shift {
			keyAt = at.Add(interval / 3)
			events = append(events, event.Key(shiftFor(l, stroke.Key), true, at, keyAt.Add(hold)))
		}
		events = append(events, event.Key(stroke.Key, stroke.Shift, keyAt, keyAt.Add(hold)))
		at = at.Add(interval)
	}
	return events, nil
}

func shiftFor(l *layout.Layout, key string) string {
	idx, ok := l.Lookup(key, -1)
	if ok && l.SectionOf(idx).Hand == layout.Left {
		return rightShift
	}
	return leftShift
}
