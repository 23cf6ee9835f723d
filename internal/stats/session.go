package stats

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/score"
)

// Forces applied by each action, in newtons.
const (
	KeyForce           = 0.45
	KeyHeldForce       = 0.54
	MouseDownForce     = 0.82
	MouseDownHeldForce = 1.0
	MouseMoveForce     = 0.4
	MouseWheelForce    = 0.2

	keyHeldAfter   = 300 * time.Millisecond
	mouseHeldAfter = 600 * time.Millisecond
)

// Force is the force an event applies while it lasts.
func Force(e event.Event) float64 {
	switch e.Kind {
	case event.KeyDown:
		if e.Duration() > keyHeldAfter {
			return KeyHeldForce
		}
		return KeyForce
	case event.MouseDown:
		if e.Duration() > mouseHeldAfter {
			return MouseDownHeldForce
		}
		return MouseDownForce
	case event.MouseMove:
		return MouseMoveForce
	case event.MouseWheel:
		return MouseWheelForce
	}
	return 0
}

// Session is a scored recording with its derived totals.
type Session struct {
	Stats    model.SessionStats
	Keys     []model.KeyStats
	Results  []score.Result
	MaxForce float64
}

// Summarize derives session totals from events and the pass that scored them.
// misses holds per-key lookup misses reported by the model, if any.
func Summarize(l *layout.Layout, events []event.Event, pass score.Pass, misses map[string]int) Session {
	st := model.SessionStats{
		Layout:          l.Name(),
		Events:          len(events),
		Score:           pass.Total,
		TransitionScore: pass.Transitions,
	}
	keys := map[string]*model.KeyStats{}
	keyFor := func(name string) *model.KeyStats {
		ks, ok := keys[name]
		if !ok {
			ks = &model.KeyStats{Key: name}
			keys[name] = ks
		}
		return ks
	}

	var maxForce float64
	for i, e := range events {
		if i == 0 || e.Start.Before(st.StartedAt) {
			st.StartedAt = e.Start
		}
		if e.Stop.After(st.EndedAt) {
			st.EndedAt = e.Stop
		}
		if e.Start.After(st.EndedAt) {
			st.EndedAt = e.Start
		}
		d := e.Duration()
		st.InMotionMs += d.Milliseconds()
		force := Force(e)
		st.ForceTime += d.Seconds() * force
		maxForce = math.Max(maxForce, force)

		switch e.Kind {
		case event.KeyDown:
			st.KeyPresses++
			ks := keyFor(l.Canonical(e.Key))
			ks.Presses++
			if i < len(pass.Results) {
				ks.CostSum += pass.Results[i].Score
			}
			if idx, ok := l.Lookup(e.Key, -1); ok {
				switch l.SectionOf(idx).Hand {
				case layout.Left:
					st.LeftPresses++
				case layout.Right:
					st.RightPresses++
				case layout.Both:
					st.BothPresses++
				}
			}
		case event.MouseDown:
			st.MouseClicks++
		case event.MouseMove:
			st.MouseMoves++
			st.MovingMs += d.Milliseconds()
			st.MouseDistance += e.PathLength()
		case event.MouseWheel:
			st.WheelTurns++
		}
	}
	if len(events) > 0 {
		st.SpanMs = st.EndedAt.Sub(st.StartedAt).Milliseconds()
	}
	for name, n := range misses {
		st.LookupMisses += n
		keyFor(l.Canonical(name)).Missed += n
	}

	out := make([]model.KeyStats, 0, len(keys))
	for _, ks := range keys {
		out = append(out, *ks)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return Session{Stats: st, Keys: out, Results: pass.Results, MaxForce: maxForce}
}

// MotionlessMs is the part of the span when no action was in progress. It
// can be negative when actions overlap.
func MotionlessMs(st model.SessionStats) int64 {
	return st.SpanMs - st.InMotionMs
}

// MouseSpeed is the average pointer speed in pixels per second.
func MouseSpeed(st model.SessionStats) float64 {
	if st.MovingMs <= 0 {
		return 0
	}
	return st.MouseDistance / (float64(st.MovingMs) / 1000)
}

// ScorePerMinute normalizes the total score by the session span.
func ScorePerMinute(st model.SessionStats) float64 {
	if st.SpanMs <= 0 {
		return 0
	}
	return st.Score / (float64(st.SpanMs) / 60000)
}

// HandDisbalance is |L-R|/(L+R)*100 over one-handed key presses. Zero
// means both hands did the same number of presses.
func HandDisbalance(left, right int) float64 {
	total := left + right
	if total == 0 {
		return 0
	}
	diff := left - right
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(total) * 100
}

// AverageCost is the mean score of one key press.
func AverageCost(presses int, costSum float64) float64 {
	if presses <= 0 {
		return 0
	}
	return costSum / float64(presses)
}
