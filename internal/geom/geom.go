// Package geom provides the 2D primitives used by the layout and cost models.
package geom

import "math"

// Point is a position in centimeters (layouts) or pixels (screen events).
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Size is a width and height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p offset by dx, dy.
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	return Hypotenuse(p2.X-p1.X, p2.Y-p1.Y)
}

// Hypotenuse returns sqrt(w*w + h*h).
func Hypotenuse(width, height float64) float64 {
	return math.Sqrt(width*width + height*height)
}
