package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/verte-zerg/stepcost/internal/fitts"
	"github.com/verte-zerg/stepcost/internal/geom"
	"github.com/verte-zerg/stepcost/internal/layout"
)

const (
	// MinKeyDistance is the shortest assumed travel between two different keys (cm).
	MinKeyDistance = 1.9
	// SpaceReachDistance is the average reach to the space bar with a hand near its home row (cm).
	SpaceReachDistance = 1.4

	spaceKey = "Space"
)

// Options tune a Keyboard.
type Options struct {
	Logger *slog.Logger
	// StrictKeys turns lookup misses into ErrUnknownKey instead of a zero cost.
	StrictKeys bool
}

// press is the last key pressed by one hand. seq orders presses within a pass;
// zero means the hand has no recorded press.
type press struct {
	target int
	seq    uint64
}

func (p press) valid() bool { return p.seq > 0 }

// Keyboard is the Model for a keyboard layout with an optional mouse pad.
type Keyboard struct {
	layout *layout.Layout
	logger *slog.Logger
	strict bool

	pad       *layout.MousePad
	padPos    layout.Handedness
	padCenter geom.Point
	padReady  bool

	seq        uint64
	lastLeft   press
	lastRight  press
	lastAmbi   press
	lastAction ActionType
	misses     map[string]int
}

var _ Model = (*Keyboard)(nil)

// NewKeyboard returns a Keyboard for l, ready for a first pass.
func NewKeyboard(l *layout.Layout, opts Options) *Keyboard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	k := &Keyboard{
		layout: l,
		logger: logger,
		strict: opts.StrictKeys,
	}
	k.PrepareForAnalysis()
	return k
}

// Layout returns the layout the keyboard prices against.
func (k *Keyboard) Layout() *layout.Layout { return k.layout }

// PrepareForAnalysis implements Model.
func (k *Keyboard) PrepareForAnalysis() {
	k.seq = 0
	k.lastLeft = press{}
	k.lastRight = press{}
	k.lastAmbi = press{}
	k.lastAction = ActionNone
	k.misses = map[string]int{}
}

// AttachPointingDevice implements Model.
func (k *Keyboard) AttachPointingDevice(pad *layout.MousePad, position layout.Handedness) {
	k.pad = pad
	k.padPos = position
	k.padReady = false
}

// LastActionType implements Model.
func (k *Keyboard) LastActionType() ActionType { return k.lastAction }

// SetLastActionType implements Model.
func (k *Keyboard) SetLastActionType(a ActionType) { k.lastAction = a }

// LookupMisses returns how often each unknown key was asked for in this pass.
func (k *Keyboard) LookupMisses() map[string]int {
	out := make(map[string]int, len(k.misses))
	for name, n := range k.misses {
		out[name] = n
	}
	return out
}

// KeyPressCost implements Model.
func (k *Keyboard) KeyPressCost(key string) (float64, error) {
	idx, ok := k.find(key)
	if !ok {
		return 0, k.miss(key)
	}
	if k.pad != nil && k.layout.SectionOf(idx).Hand == k.padPos {
		k.lastAction = ActionKeyboard
	}
	cost, err := k.cost(idx)
	if err != nil {
		return 0, fmt.Errorf("failed to price key %q: %w", key, err)
	}
	k.save(idx)
	return cost, nil
}

// MouseToKeyboardTransitionCost implements Model. Only keys operated by the
// same hand as the mouse cost anything; the hand travels from the pad center
// to the key's section center.
func (k *Keyboard) MouseToKeyboardTransitionCost(key string) (float64, error) {
	if k.pad == nil {
		return 0, ErrPointingDeviceUnset
	}
	idx, ok := k.find(key)
	if !ok {
		return 0, nil
	}
	section := k.layout.SectionOf(idx)
	if section.Hand != k.padPos {
		return 0, nil
	}
	k.lastAction = ActionKeyboard
	distance := geom.Distance(section.Center, k.mousePadCenter())
	return fitts.TargetPressScore(distance, k.layout.Target(idx).EffectiveApproachWidth())
}

// ReachForMouseTransitionCost implements Model.
func (k *Keyboard) ReachForMouseTransitionCost() (float64, error) {
	if k.pad == nil {
		return 0, ErrPointingDeviceUnset
	}
	if k.pad.Mouse == nil {
		return 0, ErrMouseUnset
	}
	section, ok := k.sectionNearestMouse()
	if !ok {
		return 0, ErrNoNearSection
	}
	distance := geom.Distance(k.layout.Section(section).Center, k.mousePadCenter())
	// The mouse is nearly always approached from the side.
	score, err := fitts.TargetPressScore(distance, k.pad.Mouse.Size.Width)
	if err != nil {
		return 0, err
	}
	k.lastAction = ActionMouse
	return score, nil
}

// State is a read-only view of the hand history.
type State struct {
	LastLeft   string
	LastRight  string
	LastAmbi   string
	LastAction ActionType
}

// Snapshot reports the last key per hand; empty names mean no history.
func (k *Keyboard) Snapshot() State {
	name := func(p press) string {
		if !p.valid() {
			return ""
		}
		return k.layout.Target(p.target).Name
	}
	return State{
		LastLeft:   name(k.lastLeft),
		LastRight:  name(k.lastRight),
		LastAmbi:   name(k.lastAmbi),
		LastAction: k.lastAction,
	}
}

func (k *Keyboard) find(key string) (int, bool) {
	lastRight := -1
	if k.lastRight.valid() {
		lastRight = k.layout.Target(k.lastRight.target).Section
	}
	return k.layout.Lookup(key, lastRight)
}

func (k *Keyboard) miss(key string) error {
	k.misses[key]++
	if k.misses[key] == 1 {
		k.logger.LogAttrs(context.Background(), slog.LevelDebug, "key not in layout",
			slog.String("key", key), slog.String("layout", k.layout.Name()))
	}
	if k.strict {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

func (k *Keyboard) cost(idx int) (float64, error) {
	target := k.layout.Target(idx)
	width := target.EffectiveApproachWidth()
	if k.isRepeat(idx) {
		return fitts.CostOfRepeatHit(width)
	}
	if k.spaceFromHomeRow(target) {
		return fitts.TargetPressScore(SpaceReachDistance, width)
	}
	return fitts.TargetPressScore(k.shortestDistance(idx), width)
}

func (k *Keyboard) isRepeat(idx int) bool {
	for _, p := range []press{k.lastLeft, k.lastRight, k.lastAmbi} {
		if p.valid() && p.target == idx {
			return true
		}
	}
	return false
}

func (k *Keyboard) spaceFromHomeRow(target layout.Target) bool {
	if target.Name != spaceKey {
		return false
	}
	return !k.lastLeft.valid() ||
		!k.lastRight.valid() ||
		k.layout.Target(k.lastLeft.target).Section == k.layout.HomeLeft() ||
		k.layout.Target(k.lastRight.target).Section == k.layout.HomeRight()
}

// sectionDistance is the travel between two sections' centers, never below MinKeyDistance.
func (k *Keyboard) sectionDistance(from, to int) float64 {
	d := geom.Distance(k.layout.Section(from).Center, k.layout.Section(to).Center)
	return math.Max(d, MinKeyDistance)
}

func (k *Keyboard) distanceFromHand(last press, home, to int) float64 {
	if !last.valid() {
		return k.sectionDistance(home, to)
	}
	return k.sectionDistance(k.layout.Target(last.target).Section, to)
}

func (k *Keyboard) shortestDistance(idx int) float64 {
	to := k.layout.Target(idx).Section
	ambi := math.Inf(1)
	if k.lastAmbi.valid() {
		ambi = k.sectionDistance(k.layout.Target(k.lastAmbi.target).Section, to)
	}
	left := k.distanceFromHand(k.lastLeft, k.layout.HomeLeft(), to)
	right := k.distanceFromHand(k.lastRight, k.layout.HomeRight(), to)

	same := math.Inf(1)
	switch k.layout.Section(to).Hand {
	case layout.Left:
		same = left
	case layout.Right:
		same = right
	case layout.Both:
		return math.Min(ambi, math.Min(left, right))
	}
	if math.IsInf(same, 1) && math.IsInf(ambi, 1) {
		return MinKeyDistance
	}
	return math.Min(same, ambi)
}

// save records idx as the last press of its hand. A one-handed press forgets
// the ambidextrous key once the other hand has also pressed after it.
func (k *Keyboard) save(idx int) {
	k.seq++
	p := press{target: idx, seq: k.seq}
	switch k.layout.SectionOf(idx).Hand {
	case layout.Left:
		k.lastLeft = p
		if k.lastRight.seq > k.lastAmbi.seq {
			k.lastAmbi = press{}
		}
	case layout.Right:
		k.lastRight = p
		if k.lastLeft.seq > k.lastAmbi.seq {
			k.lastAmbi = press{}
		}
	case layout.Both:
		k.lastAmbi = p
	}
}

func (k *Keyboard) mousePadCenter() geom.Point {
	if k.padReady {
		return k.padCenter
	}
	size := k.layout.Size()
	center := geom.Pt(k.pad.Size.Width/2, k.pad.Size.Height/2)
	switch k.padPos {
	case layout.Left:
		center = center.Add(-k.pad.Size.Width, 0)
	case layout.Right:
		center = center.Add(size.Width, 0)
	case layout.Both:
		between := (k.layout.Section(k.layout.HomeLeft()).Center.X + k.layout.Section(k.layout.HomeRight()).Center.X) / 2
		center = center.Add(between, size.Height)
	}
	k.padCenter = center
	k.padReady = true
	return center
}

func (k *Keyboard) sectionNearestMouse() (int, bool) {
	pick := func(last press, home int) int {
		if last.valid() {
			return k.layout.Target(last.target).Section
		}
		return home
	}
	switch k.padPos {
	case layout.Left:
		return pick(k.lastLeft, k.layout.HomeLeft()), true
	case layout.Right:
		return pick(k.lastRight, k.layout.HomeRight()), true
	case layout.Both:
		return pick(k.lastAmbi, k.layout.HomeRight()), true
	}
	return -1, false
}

// MissedKeys lists missed key names sorted by count, then name.
func MissedKeys(misses map[string]int) []string {
	names := make([]string, 0, len(misses))
	for name := range misses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if misses[names[i]] == misses[names[j]] {
			return names[i] < names[j]
		}
		return misses[names[i]] > misses[names[j]]
	})
	return names
}
