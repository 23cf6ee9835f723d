// Package device holds the stateful input-device cost model.
//
// A Model remembers where each hand was last active and whether the user was
// last on the keyboard or the mouse, and prices each new action from that
// state. One Model instance serves one analysis pass; it is not safe for
// concurrent use. The layout it reads is immutable and may be shared.
package device

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/stepcost/internal/layout"
)

var (
	// ErrPointingDeviceUnset is returned by costs that need the mouse pad before one is attached.
	ErrPointingDeviceUnset = errors.New("pointing device not specified")
	// ErrMouseUnset is returned when the attached pad holds no mouse.
	ErrMouseUnset = errors.New("mouse not specified")
	// ErrNoNearSection is returned when no keyboard section near the mouse can be determined.
	ErrNoNearSection = errors.New("no keyboard section near the mouse")
	// ErrUnknownKey is returned for keys missing from the layout when strict lookups are enabled.
	ErrUnknownKey = errors.New("key not found in layout")
)

// ActionType records whether the mouse hand was last on the keyboard or the mouse.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionKeyboard
	ActionMouse
)

func (a ActionType) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionKeyboard:
		return "keyboard"
	case ActionMouse:
		return "mouse"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Model prices keyboard and mouse actions for one analysis pass.
type Model interface {
	// PrepareForAnalysis clears all press history and the last action.
	PrepareForAnalysis()
	// AttachPointingDevice sets the mouse pad and the side of the keyboard it sits on.
	AttachPointingDevice(pad *layout.MousePad, position layout.Handedness)
	// KeyPressCost prices a key press and records it.
	KeyPressCost(key string) (float64, error)
	// MouseToKeyboardTransitionCost prices moving the mouse hand back to key.
	MouseToKeyboardTransitionCost(key string) (float64, error)
	// ReachForMouseTransitionCost prices moving from the keyboard to the mouse.
	ReachForMouseTransitionCost() (float64, error)
	LastActionType() ActionType
	SetLastActionType(ActionType)
}
