package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named curve.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	axisLabelWidth    = 7
	axisSeparator     = " │ "
	fallbackWidth     = 80
	ansiReset         = "\x1b[0m"
)

// dash patterns repeat along x; '1' draws a dot.
var dashes = []struct {
	name    string
	pattern string
}{
	{"solid", "1"},
	{"dashed", "111000"},
	{"dotted", "1000"},
	{"dashdot", "11100000"},
}

var ansiColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m", "\x1b[34m"}

// brailleBits maps a dot at (x, y) inside a 2x4 cell to its bit.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas holds braille cells; dot coordinates are twice the width and four
// times the height of the cell grid.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) *canvas {
	c := &canvas{cells: make([][]uint8, height)}
	for y := range c.cells {
		c.cells[y] = make([]uint8, width)
	}
	return c
}

func (c *canvas) set(x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cy >= len(c.cells) || cx >= len(c.cells[cy]) {
		return
	}
	c.cells[cy][cx] |= brailleBits[x%2][y%4]
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm, skipping
// columns the dash pattern leaves blank.
func (c *canvas) line(x0, y0, x1, y1 int, pattern string) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if pattern[absInt(x0)%len(pattern)] == '1' {
			c.set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// span is the value range one series is drawn against.
type span struct {
	lo, hi float64
}

func spanOf(values []float64) span {
	s := span{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, v := range values {
		s.lo = math.Min(s.lo, v)
		s.hi = math.Max(s.hi, v)
	}
	if math.IsInf(s.lo, 1) {
		return span{lo: -1, hi: 1}
	}
	if s.hi-s.lo < 1e-9 {
		s.lo--
		s.hi++
	}
	return s
}

// dotRow maps v to a dot row, 0 at the top.
func (s span) dotRow(v float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - s.lo) / (s.hi - s.lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return max(0, min(rows-1, row))
}

// PlotSeries renders series as a braille line plot.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with color forced on. NO_COLOR still wins.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var drawn []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	layers := make([]*canvas, len(drawn))
	spans := make([]span, len(drawn))
	for i, s := range drawn {
		values := resample(s.Values, width)
		spans[i] = spanOf(values)
		layers[i] = newCanvas(width, height)
		pattern := dashes[i%len(dashes)].pattern
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := 2*x, spans[i].dotRow(v, 4*height)
			if prevX < 0 {
				prevX, prevY = px, py
			}
			layers[i].line(prevX, prevY, px, py, pattern)
			prevX, prevY = px, py
		}
	}

	color := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	if len(drawn) > 1 {
		b.WriteString("Axis follows " + drawn[0].Name + "; other curves are scaled to fit.\n")
	}
	for i, s := range drawn {
		fmt.Fprintf(&b, "%s: min=%.2f max=%.2f\n", s.Name, spans[i].lo, spans[i].hi)
	}
	labels := axisLabels(height, spans[0])
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, layer := range layers {
				if m := layer.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			r := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(ansiColors[owner%len(ansiColors)] + string(r) + ansiReset)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(drawn, color) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		part := fmt.Sprintf("⠁ %s (%s)", s.Name, dashes[i%len(dashes)].name)
		if color {
			part = ansiColors[i%len(ansiColors)] + part + ansiReset
		}
		parts[i] = part
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// PlotWidthFor returns the plot width that fits totalWidth columns next to
// the axis labels.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := axisLabelWidth + runewidth.StringWidth(axisSeparator)
	return max(minPlotWidth, totalWidth-axis)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// axisLabels labels the top, middle and bottom rows.
func axisLabels(height int, s span) []string {
	labels := make([]string, height)
	labels[0] = axisValue(s.hi)
	if height > 2 {
		labels[height/2] = axisValue((s.hi + s.lo) / 2)
	}
	if height > 1 {
		labels[height-1] = axisValue(s.lo)
	}
	return labels
}

func axisValue(v float64) string {
	label := fmt.Sprintf("%.2f", v)
	if len(label) > axisLabelWidth {
		label = fmt.Sprintf("%.3g", v)
	}
	if len(label) > axisLabelWidth {
		label = label[:axisLabelWidth]
	}
	return label
}

// resample stretches or squeezes values to n points: buckets are averaged
// when shrinking and neighbours interpolated when growing.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := range out {
			lo := i * len(values) / n
			hi := max(lo+1, (i+1)*len(values)/n)
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		last := len(values) - 1
		for i := range out {
			pos := float64(i) * float64(last) / float64(n-1)
			idx := min(int(pos), last-1)
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}
