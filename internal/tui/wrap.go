package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/stepcost/internal/event"
)

const (
	// Key presses cheaper than lowCost are plain; from highCost on they are red.
	lowCost  = 1.0
	highCost = 2.0
)

type styledCell struct {
	s       string
	width   int
	isSpace bool
}

// glyph is the character shown for an event in the stream.
func glyph(e event.Event) rune {
	switch e.Kind {
	case event.MouseDown:
		return '●'
	case event.MouseMove:
		return '·'
	case event.MouseWheel:
		return '≡'
	case event.KeyDown:
	default:
		return '?'
	}
	switch e.Key {
	case "Space":
		return ' '
	case "Enter", "Return":
		return '⏎'
	case "Tab":
		return '⇥'
	case "Back", "Backspace":
		return '⌫'
	case "LShiftKey", "RShiftKey", "ShiftKey":
		return '⇧'
	}
	if r, ok := keyRunes[e.Key]; ok {
		return r
	}
	runes := []rune(e.Key)
	switch {
	case len(runes) == 1 && e.Shift:
		return unicode.ToUpper(runes[0])
	case len(runes) == 1:
		return unicode.ToLower(runes[0])
	case len(runes) == 2 && runes[0] == 'D' && unicode.IsDigit(runes[1]):
		return runes[1]
	}
	return '□'
}

var keyRunes = map[string]rune{
	"OemPeriod":       '.',
	"Oemcomma":        ',',
	"OemQuestion":     '/',
	"OemMinus":        '-',
	"Oemplus":         '=',
	"OemOpenBrackets": '[',
	"Oem6":            ']',
	"Oem7":            '\'',
	"Oem5":            '\\',
	"Oem1":            ';',
	"Oemtilde":        '`',
}

func styleFor(r Row) lipgloss.Style {
	style := cheapStyle
	switch {
	case r.Event.Kind.IsMouse():
		style = mouseStyle
	case r.Result.Score >= highCost:
		style = costlyStyle
	case r.Result.Score >= lowCost:
		style = mediumStyle
	}
	if r.Result.Transition > 0 {
		style = style.Bold(true)
	}
	return style
}

func buildStyledCells(rows []Row, cursorIndex int) []styledCell {
	out := make([]styledCell, 0, len(rows))
	for i, row := range rows {
		displayed := glyph(row.Event)
		style := styleFor(row)
		if i == cursorIndex {
			style = style.Reverse(true)
		}
		out = append(out, styledCell{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: displayed == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

// findWords splits the stream on Space presses.
func findWords(rows []Row) []wordRange {
	words := []wordRange{}
	start := -1
	for i, row := range rows {
		if row.Event.Kind == event.KeyDown && row.Event.Key == "Space" {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(rows)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	for i, w := range words {
		if cursorIndex >= w.start && cursorIndex < w.end {
			return &words[i]
		}
	}
	return nil
}

func wordCost(rows []Row, w *wordRange) float64 {
	if w == nil {
		return 0
	}
	total := 0.0
	for _, row := range rows[w.start:w.end] {
		total += row.Result.Score
	}
	return total
}

func renderStyledCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledCells(cells []styledCell, width int) string {
	if width <= 0 {
		return renderStyledCells(cells)
	}
	var out strings.Builder
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledCells(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledCell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledCells(line))
	return out.String()
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
