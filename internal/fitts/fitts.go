// Package fitts converts travel distances and target widths into effort scores.
//
// Scores follow Fitts's law: slope * log2(1 + distance/width). The slope is
// normalized so that pressing a standard 1.8cm key fully surrounded by other
// keys, one key pitch (1.9cm) away from the finger, costs 1.0.
package fitts

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/stepcost/internal/geom"
)

const (
	// Slope normalizes the index of difficulty.
	Slope = 1 / 0.90646800019733764

	// RepeatDistance is how far (cm) a finger travels to hit the same key again.
	RepeatDistance = 0.4

	// DefaultMouseTargetWidth is the assumed on-screen click target width, in pixels.
	DefaultMouseTargetWidth = 27.0

	clickCost    = 0.25
	clickSegment = 250.0 // ms
)

// ErrInvalidApproachWidth is returned when a target approach width is zero,
// negative or NaN. It points at malformed layout data.
var ErrInvalidApproachWidth = errors.New("invalid target approach width")

// TargetApproachWidth averages the shortest side with the hypotenuse, which
// stands in for an approach angle that cannot be known from key history alone.
func TargetApproachWidth(width, height float64) float64 {
	return (math.Min(width, height) + geom.Hypotenuse(width, height)) / 2
}

// TargetPressScore returns the cost of reaching a target of the given approach
// width after travelling distance.
func TargetPressScore(distance, approachWidth float64) (float64, error) {
	if approachWidth <= 0 || math.IsNaN(approachWidth) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidApproachWidth, approachWidth)
	}
	return Slope * math.Log2(1+distance/approachWidth), nil
}

// MouseDownScore is linear in how long the button was held.
func MouseDownScore(durationMs float64) float64 {
	return clickCost * durationMs / clickSegment
}

// CostOfRepeatHit is the cost of pressing the same target twice in a row.
func CostOfRepeatHit(approachWidth float64) (float64, error) {
	return TargetPressScore(RepeatDistance, approachWidth)
}
