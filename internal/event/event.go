// Package event defines the recorded input events consumed by the scorer.
package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/stepcost/internal/geom"
)

// Kind tags the payload carried by an Event.
type Kind int

const (
	KindUnknown Kind = iota
	KeyDown
	MouseDown
	MouseMove
	MouseWheel
)

// Kinds lists the valid kinds in declaration order.
var Kinds = []Kind{KeyDown, MouseDown, MouseMove, MouseWheel}

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key-down"
	case MouseDown:
		return "mouse-down"
	case MouseMove:
		return "mouse-move"
	case MouseWheel:
		return "mouse-wheel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsMouse reports whether the event is made with the pointing device.
func (k Kind) IsMouse() bool {
	return k == MouseDown || k == MouseMove || k == MouseWheel
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", s)
}

// Event is one recorded action. Which payload fields matter depends on Kind:
//
//	KeyDown:    Key, Shift
//	MouseDown:  Position (where the button went down)
//	MouseMove:  From, Path, Position (end of the move)
//	MouseWheel: Detents
//
// Start and Stop bound the action; for a key or button Stop is the release.
type Event struct {
	Kind     Kind
	Start    time.Time
	Stop     time.Time
	Key      string
	Shift    bool
	Position geom.Point
	From     geom.Point
	Path     []geom.Point
	Detents  int
}

// Duration is Stop minus Start, never negative.
func (e Event) Duration() time.Duration {
	d := e.Stop.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// DurationMs is Duration in fractional milliseconds.
func (e Event) DurationMs() float64 {
	return float64(e.Duration()) / float64(time.Millisecond)
}

// PathLength sums the segments From -> Path... -> Position of a move. Other
// kinds have no path.
func (e Event) PathLength() float64 {
	if e.Kind != MouseMove {
		return 0
	}
	total := 0.0
	prev := e.From
	for _, p := range e.Path {
		total += geom.Distance(prev, p)
		prev = p
	}
	return total + geom.Distance(prev, e.Position)
}

// Key returns a key-down event.
func Key(key string, shift bool, start, stop time.Time) Event {
	return Event{Kind: KeyDown, Key: key, Shift: shift, Start: start, Stop: stop}
}

// Click returns a mouse-down event at pos.
func Click(pos geom.Point, start, stop time.Time) Event {
	return Event{Kind: MouseDown, Position: pos, Start: start, Stop: stop}
}

// Move returns a mouse-move event from one point to another through path.
func Move(from, to geom.Point, start, stop time.Time, path ...geom.Point) Event {
	return Event{Kind: MouseMove, From: from, Position: to, Path: path, Start: start, Stop: stop}
}

// Wheel returns a mouse-wheel event.
func Wheel(detents int, start, stop time.Time) Event {
	return Event{Kind: MouseWheel, Detents: detents, Start: start, Stop: stop}
}
