package fitts

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standardKey = 1.8

func TestCalibrationAtOneKeyPitch(t *testing.T) {
	w := TargetApproachWidth(standardKey, standardKey)
	score, err := TargetPressScore(1.9, w)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestTargetApproachWidth(t *testing.T) {
	assert.InDelta(t, (1.8+math.Sqrt(2*1.8*1.8))/2, TargetApproachWidth(1.8, 1.8), 1e-12)
	assert.InDelta(t, (3+5.0)/2, TargetApproachWidth(4, 3), 1e-12)
	assert.InDelta(t, TargetApproachWidth(4, 3), TargetApproachWidth(3, 4), 1e-12)
}

func TestTargetPressScoreMonotonic(t *testing.T) {
	prev := -1.0
	for _, d := range []float64{0, 0.4, 1, 1.9, 5, 20} {
		score, err := TargetPressScore(d, 2)
		require.NoError(t, err)
		if score <= prev {
			t.Fatalf("expected increasing score at distance %v, got %v after %v", d, score, prev)
		}
		prev = score
	}

	prev = math.Inf(1)
	for _, w := range []float64{0.5, 1, 2, 4, 10} {
		score, err := TargetPressScore(3, w)
		require.NoError(t, err)
		if score >= prev {
			t.Fatalf("expected decreasing score at width %v, got %v after %v", w, score, prev)
		}
		prev = score
	}
}

func TestTargetPressScoreZeroDistance(t *testing.T) {
	score, err := TargetPressScore(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestTargetPressScoreRejectsBadWidth(t *testing.T) {
	for _, w := range []float64{0, -1, math.NaN()} {
		_, err := TargetPressScore(1, w)
		if !errors.Is(err, ErrInvalidApproachWidth) {
			t.Fatalf("expected ErrInvalidApproachWidth for width %v, got %v", w, err)
		}
	}
	if _, err := CostOfRepeatHit(0); !errors.Is(err, ErrInvalidApproachWidth) {
		t.Fatalf("expected repeat hit to surface width error, got %v", err)
	}
}

func TestMouseDownScore(t *testing.T) {
	assert.InDelta(t, 0.25, MouseDownScore(250), 1e-12)
	assert.InDelta(t, 1.0, MouseDownScore(1000), 1e-12)
	assert.Equal(t, 0.0, MouseDownScore(0))
}

func TestCostOfRepeatHit(t *testing.T) {
	w := TargetApproachWidth(standardKey, standardKey)
	repeat, err := CostOfRepeatHit(w)
	require.NoError(t, err)
	direct, err := TargetPressScore(RepeatDistance, w)
	require.NoError(t, err)
	assert.Equal(t, direct, repeat)
	assert.Less(t, repeat, 1.0)
}
