package layout

import (
	"sync"

	"github.com/verte-zerg/stepcost/internal/geom"
)

// Section names of the built-in natural keyboard.
const (
	SectionArrows         = "arrows"
	SectionFunctionLeft   = "function-left"
	SectionFunctionRight  = "function-right"
	SectionHomeLeft       = "home-left"
	SectionHomeRight      = "home-right"
	SectionNumbersLeft    = "numbers-left"
	SectionNumbersRight   = "numbers-right"
	SectionExtendedNav    = "extended-nav"
	SectionNumPad         = "numpad"
	SectionNumPadTopRow   = "numpad-top-row"
	SectionSpace          = "space"
	SectionEscape         = "escape"
	SectionLeftColumn     = "left-column"
	SectionLeftModifiers  = "left-modifiers"
	SectionRightModifiers = "right-modifiers"
	SectionWebKeys        = "web-keys"
	SectionPunctuation    = "punctuation"
)

// NaturalName is the name of the built-in layout.
const NaturalName = "natural"

const (
	stdKeyHeight = 1.8
	fnKeyHeight  = 1.5
	stdKeyWidth  = 1.8
)

var (
	sizeStandard    = geom.Size{Width: stdKeyWidth, Height: stdKeyHeight}
	sizeT           = geom.Size{Width: 2.9, Height: stdKeyHeight}
	sizeH           = geom.Size{Width: 2.7, Height: stdKeyHeight}
	sizeN           = geom.Size{Width: 3.5, Height: stdKeyHeight}
	sizeG           = geom.Size{Width: 2.0, Height: stdKeyHeight}
	sizeD7          = geom.Size{Width: 3.0, Height: stdKeyHeight}
	sizeAdd         = geom.Size{Width: 1.9, Height: 3.5}
	sizeNumPadEnter = geom.Size{Width: 1.8, Height: 3.3}
	sizeNumPad0     = geom.Size{Width: 3.5, Height: stdKeyHeight}
	sizeSpace       = geom.Size{Width: 14.7, Height: 4.8}
	sizeEscape      = geom.Size{Width: 2.4, Height: fnKeyHeight}
	sizeTilde       = geom.Size{Width: 2.9, Height: stdKeyHeight}
	sizeTab         = geom.Size{Width: 3.7, Height: stdKeyHeight}
	sizeCapsLock    = geom.Size{Width: 3.6, Height: stdKeyHeight}
	sizeLeftShift   = geom.Size{Width: 4.1, Height: stdKeyHeight}
	sizeRightShift  = geom.Size{Width: 3.9, Height: stdKeyHeight}
	sizeCtrl        = geom.Size{Width: 3.5, Height: 2.5}
	sizeWindows     = geom.Size{Width: 3.5, Height: 2.6}
	sizeLeftAlt     = geom.Size{Width: 2.5, Height: 2.8}
	sizeRightAlt    = geom.Size{Width: 2.9, Height: 2.8}
	sizeContextMenu = geom.Size{Width: 2.8, Height: 2.6}
	sizeEnter       = geom.Size{Width: 3.0, Height: stdKeyHeight}
	sizeBackspace   = geom.Size{Width: 3.5, Height: stdKeyHeight}
)

var natural = sync.OnceValue(func() *Layout {
	l, err := naturalBuilder().Build()
	if err != nil {
		panic(err)
	}
	return l
})

// Natural returns the built-in ergonomic split keyboard. The value is shared.
func Natural() *Layout {
	return natural()
}

func naturalBuilder() *Builder {
	b := NewBuilder(NaturalName, geom.Size{Width: 50, Height: 25.4}, sizeStandard)

	b.Section(SectionArrows, geom.Pt(37.1, 14.7), geom.Size{Width: 6.2, Height: 5.2}, Right).
		Key("Left", SideLeft|SideTop|SideBottom).
		Key("Up", SideLeft|SideTop|SideRight).
		Key("Right", SideBottom|SideTop|SideRight).
		Key("Down", SideBottom)

	b.Section(SectionFunctionLeft, geom.Pt(10.25, 5.5), geom.Size{Width: 9.4, Height: 3.7}, Left).
		Key("F1", SideLeft|SideTop|SideBottom).
		Key("F2", SideTop|SideBottom).
		Key("F3", SideTop|SideBottom).
		Key("F4", SideTop|SideBottom).
		Key("F5", SideTop|SideBottom|SideRight)

	b.Section(SectionFunctionRight, geom.Pt(25.4, 6), geom.Size{Width: 13.4, Height: 2.0}, Right).
		Key("F6", SideLeft|SideTop|SideBottom).
		Key("F7", SideTop|SideBottom).
		Key("F8", SideTop|SideBottom).
		Key("F9", SideTop|SideBottom).
		Key("F10", SideTop|SideBottom).
		Key("F11", SideTop|SideBottom).
		Key("F12", SideTop|SideBottom)

	b.Section(SectionHomeLeft, geom.Pt(10, 11.85), geom.Size{Width: 9.6, Height: 5.4}, Left).
		Keys("Q", "W", "E", "R").
		KeySized("T", SideRight, sizeT).
		Keys("A", "S", "D", "F").
		KeySized("G", SideRight, sizeG).
		Keys("Z", "X", "C", "V").
		Key("B", SideRight)

	b.Section(SectionHomeRight, geom.Pt(23.3, 12.7), geom.Size{Width: 9.7, Height: 5.5}, Right).
		Key("Y", SideLeft).
		Keys("U", "I", "O", "P").
		KeySized("H", SideLeft, sizeH).
		Keys("J", "K", "L").
		KeySized("N", SideLeft, sizeN).
		Keys("M")

	// The left number row shares its recorded center with the right home row.
	b.Section(SectionNumbersLeft, geom.Pt(23.3, 12.7), geom.Size{Width: 9.7, Height: 5.5}, Left).
		Key("D1", SideTop).
		Key("D2", SideTop).
		Key("D3", SideTop).
		Key("D4", SideTop).
		Key("D5", SideTop).
		Key("D6", SideTop|SideRight)

	b.Section(SectionNumbersRight, geom.Pt(37.2, 9.2), geom.Size{Width: 5.8, Height: 5.5}, Right).
		KeySized("D7", SideTop|SideLeft, sizeD7).
		Key("D8", SideTop).
		Key("D9", SideTop).
		Key("D0", SideTop)

	b.Section(SectionExtendedNav, geom.Pt(23.3, 12.7), geom.Size{Width: 9.7, Height: 4.1}, Right).
		Key("Insert", SideTop|SideLeft).
		Key("Home", SideTop).
		Key("PageUp", SideTop|SideRight).
		Key("Delete", SideLeft|SideBottom).
		Key("End", SideBottom).
		Key("PageDown", SideBottom|SideRight)

	b.Section(SectionNumPad, geom.Pt(44.4, 12.2), geom.Size{Width: 7.75, Height: 9.6}, Right).
		Key("NumLock", SideLeft|SideTop).
		Key("Divide", SideTop).
		Key("Multiply", SideTop).
		Key("Subtract", SideTop|SideRight).
		Key("NumPad7", SideLeft).
		Keys("NumPad8", "NumPad9").
		KeySized("Add", SideRight, sizeAdd).
		Key("NumPad4", SideLeft).
		Keys("NumPad5", "NumPad6").
		Key("NumPad1", SideLeft).
		Keys("NumPad2", "NumPad3").
		KeySized("Enter", SideRight|SideBottom, sizeNumPadEnter).
		KeySized("NumPad0", SideLeft|SideBottom, sizeNumPad0).
		Keys("Delete")

	b.Section(SectionNumPadTopRow, geom.Pt(37.4, 5.9), geom.Size{Width: 5.8, Height: 1.9}, Right).
		Key("PrintScreen", SideLeft|SideTop|SideBottom).
		Key("Scroll", SideTop|SideBottom).
		Key("Pause", SideRight|SideTop|SideBottom)

	b.Section(SectionSpace, geom.Pt(16.7, 17.2), sizeSpace, Both).
		KeySized("Space", SideBottom, sizeSpace)

	b.Section(SectionEscape, geom.Pt(3.1, 4.3), geom.Size{Width: 2.4, Height: 1.9}, Left).
		KeySized("Escape", AllSides, sizeEscape)

	b.Section(SectionLeftColumn, geom.Pt(2.6, 8.2), geom.Size{Width: 3.9, Height: 5.9}, Left).
		KeySized("Oemtilde", SideLeft|SideTop, sizeTilde).
		KeySized("Tab", SideLeft, sizeTab).
		KeySized("Capital", SideLeft, sizeCapsLock).
		KeySized("CapsLock", SideLeft, sizeCapsLock)

	b.Section(SectionLeftModifiers, geom.Pt(5.3, 14.8), geom.Size{Width: 8.6, Height: 6.8}, Left).
		KeySized("LShiftKey", SideLeft, sizeLeftShift).
		KeySized("LControlKey", SideLeft|SideBottom, sizeCtrl).
		KeySized("LWin", SideBottom, sizeWindows).
		KeySized("LMenu", SideBottom, sizeLeftAlt)

	b.Section(SectionRightModifiers, geom.Pt(28.9, 15.5), geom.Size{Width: 10.0, Height: 5.3}, Right).
		KeySized("RShiftKey", SideRight, sizeRightShift).
		KeySized("RControlKey", SideRight|SideBottom, sizeCtrl).
		KeySized("Apps", SideBottom, sizeContextMenu).
		KeySized("RMenu", SideBottom, sizeRightAlt)

	b.Section(SectionWebKeys, geom.Pt(6.1, 2.2), geom.Size{Width: 6.5, Height: 1.0}, Left).
		Key("BrowserHome", SideLeft|SideTop|SideBottom).
		Key("BrowserSearch", SideTop|SideBottom).
		Key("LaunchMail", SideRight|SideTop|SideBottom)

	b.Section(SectionPunctuation, geom.Pt(29.2, 11.0), geom.Size{Width: 9.2, Height: 7.9}, Right).
		Keys("OemPeriod", "OemQuestion").
		Key("OemMinus", SideTop).
		Key("Oemplus", SideTop).
		Keys("Oemcomma", "OemOpenBrackets", "Oem7", "Oem6").
		Key("Oem5", SideRight).
		Keys("Oem1").
		KeySized("Back", SideTop|SideRight, sizeBackspace).
		KeySized("Enter", SideRight, sizeEnter)

	b.HomeRows(SectionHomeLeft, SectionHomeRight)
	b.Alias("Return", "Enter").
		Alias("Backspace", "Back").
		Alias("Esc", "Escape")
	b.Duplicate(DuplicateRule{
		Name:         "Enter",
		Preferred:    SectionNumPad,
		Default:      SectionPunctuation,
		NearSections: []string{SectionNumPad, SectionNumPadTopRow},
	})
	return b
}

var keyLabels = map[string]string{
	"RShiftKey":       "Shift (right)",
	"LShiftKey":       "Shift (left)",
	"OemPeriod":       ".",
	"Oemtilde":        "~",
	"LMenu":           "Alt (left)",
	"RMenu":           "Alt (right)",
	"OemQuestion":     "?",
	"OemMinus":        "-",
	"Oemplus":         "+",
	"Oemcomma":        ",",
	"OemOpenBrackets": "[",
	"Oem7":            "'",
	"Oem6":            "]",
	"Oem5":            "\\",
	"Oem1":            ";",
	"RControlKey":     "Ctrl (right)",
	"LControlKey":     "Ctrl (left)",
	"LWin":            "Win (left)",
	"RWin":            "Win (right)",
}

// Label returns a human-readable label for a recorded key name.
func Label(name string) string {
	if label, ok := keyLabels[name]; ok {
		return label
	}
	if len(name) == 2 && name[0] == 'D' && name[1] >= '0' && name[1] <= '9' {
		return name[1:]
	}
	return name
}
