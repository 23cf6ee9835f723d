// Package score turns an ordered event sequence into Miller Complexity Index
// scores using a device.Model.
//
// A Scorer is a fold over the sequence: each event's score depends only on
// the events before it, so scoring a whole recording at once and scoring it
// live, one event at a time, give the same numbers.
package score

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/stepcost/internal/device"
	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/fitts"
	"github.com/verte-zerg/stepcost/internal/geom"
)

const (
	// ShiftChangePenalty is added when consecutive key presses switch the
	// shift state quickly.
	ShiftChangePenalty = 3.0
	// ShiftChangeWindow bounds "quickly", measured start to start.
	ShiftChangeWindow = 750 * time.Millisecond

	// MoveMergeGap joins mouse moves into one trajectory when the pause
	// between them is shorter than this.
	MoveMergeGap = 260 * time.Millisecond
	// MoveClickWindow is how recent a move must be to count as travel toward a click.
	MoveClickWindow = 300 * time.Millisecond

	moveSegmentMs = 500.0
	wheelCost     = 1.0
)

var (
	// ErrOutOfOrder is returned for an event that starts before its predecessor.
	ErrOutOfOrder = errors.New("event starts before the previous event")
	// ErrUnknownKind is returned for events outside the four known kinds.
	ErrUnknownKind = errors.New("unknown event kind")
)

// Result is the score of one event.
type Result struct {
	Index int
	Kind  event.Kind
	// Score includes Transition.
	Score float64
	// Transition is the part of Score spent moving the hand between the
	// keyboard and the mouse.
	Transition float64
	// Travel is the on-screen distance (px) credited to a mouse-down.
	Travel float64
}

// Scorer scores events in arrival order. It is not safe for concurrent use.
type Scorer struct {
	model       device.Model
	n           int
	prev        event.Event
	run         []event.Event
	total       float64
	transitions float64
}

// New prepares m for a fresh pass and returns a Scorer over it.
func New(m device.Model) *Scorer {
	m.PrepareForAnalysis()
	return &Scorer{model: m}
}

// Total is the running sum of scores.
func (s *Scorer) Total() float64 { return s.total }

// Transitions is the running sum of keyboard/mouse transition costs.
func (s *Scorer) Transitions() float64 { return s.transitions }

// Count is the number of events scored so far.
func (s *Scorer) Count() int { return s.n }

// Next scores e. On error the scorer state and the model's last action are
// unchanged; press history the model recorded before failing is kept.
func (s *Scorer) Next(e event.Event) (Result, error) {
	if s.n > 0 && e.Start.Before(s.prev.Start) {
		return Result{}, fmt.Errorf("%w: event %d (%s) at %s, previous at %s",
			ErrOutOfOrder, s.n, e.Kind, e.Start.Format(time.RFC3339Nano), s.prev.Start.Format(time.RFC3339Nano))
	}
	res := Result{Index: s.n, Kind: e.Kind}
	last := s.model.LastActionType()
	var err error
	switch e.Kind {
	case event.KeyDown:
		err = s.keyDown(e, &res)
	case event.MouseDown:
		err = s.mouse(e, &res, func() (float64, error) {
			res.Travel = s.travelTo(e)
			press, err := fitts.TargetPressScore(res.Travel, fitts.DefaultMouseTargetWidth)
			if err != nil {
				return 0, err
			}
			return fitts.MouseDownScore(e.DurationMs()) + press, nil
		})
	case event.MouseMove:
		err = s.mouse(e, &res, func() (float64, error) {
			return e.DurationMs() / moveSegmentMs, nil
		})
	case event.MouseWheel:
		err = s.mouse(e, &res, func() (float64, error) {
			return wheelCost, nil
		})
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
	if err != nil {
		s.model.SetLastActionType(last)
		return Result{}, fmt.Errorf("failed to score event %d (%s): %w", s.n, e.Kind, err)
	}

	s.track(e)
	s.prev = e
	s.n++
	s.total += res.Score
	s.transitions += res.Transition
	return res, nil
}

func (s *Scorer) keyDown(e event.Event, res *Result) error {
	if s.model.LastActionType() == device.ActionMouse {
		t, err := s.model.MouseToKeyboardTransitionCost(e.Key)
		if err != nil {
			return err
		}
		res.Transition = t
		res.Score = t
	} else if s.n > 0 && s.prev.Kind == event.KeyDown && s.prev.Shift != e.Shift &&
		e.Start.Sub(s.prev.Start) < ShiftChangeWindow {
		res.Score = ShiftChangePenalty
	}
	cost, err := s.model.KeyPressCost(e.Key)
	if err != nil {
		return err
	}
	res.Score += cost
	return nil
}

// mouse adds the reach transition when the hand comes off the keyboard, then
// the kind-specific base cost. The mouse is the last action either way.
func (s *Scorer) mouse(e event.Event, res *Result, base func() (float64, error)) error {
	if s.n > 0 && s.prev.Kind == event.KeyDown && s.model.LastActionType() != device.ActionMouse {
		t, err := s.model.ReachForMouseTransitionCost()
		if err != nil {
			return err
		}
		res.Transition = t
	}
	s.model.SetLastActionType(device.ActionMouse)
	b, err := base()
	if err != nil {
		return err
	}
	res.Score = res.Transition + b
	return nil
}

// track keeps the current run of mouse moves that follow each other closely.
func (s *Scorer) track(e event.Event) {
	if e.Kind != event.MouseMove {
		s.run = s.run[:0]
		return
	}
	if len(s.run) > 0 && e.Start.Sub(s.run[len(s.run)-1].Stop) >= MoveMergeGap {
		s.run = s.run[:0]
	}
	s.run = append(s.run, e)
}

// travelTo is the distance from the start of the move run leading into a
// click to the click position, or zero if the pointer was not moving just
// before it.
func (s *Scorer) travelTo(e event.Event) float64 {
	if s.n == 0 || s.prev.Kind != event.MouseMove || len(s.run) == 0 {
		return 0
	}
	if s.prev.Stop.Before(e.Start.Add(-MoveClickWindow)) {
		return 0
	}
	return geom.Distance(s.run[0].From, e.Position)
}

// Pass is the outcome of scoring a whole sequence.
type Pass struct {
	Results     []Result
	Total       float64
	Transitions float64
}

// Score runs a fresh pass of m over events.
func Score(m device.Model, events []event.Event) (Pass, error) {
	s := New(m)
	results := make([]Result, 0, len(events))
	for _, e := range events {
		r, err := s.Next(e)
		if err != nil {
			return Pass{}, err
		}
		results = append(results, r)
	}
	return Pass{Results: results, Total: s.Total(), Transitions: s.Transitions()}, nil
}
