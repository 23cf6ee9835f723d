// Package layout describes the physical geometry of an input device: targets
// (keys) grouped into sections, each section with a center point and the hand
// that normally operates it.
//
// All sizes and points are in centimeters, measured from the top-left corner of
// the device with X growing right and Y growing down. A built Layout is
// immutable and safe to share between goroutines.
package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/verte-zerg/stepcost/internal/fitts"
	"github.com/verte-zerg/stepcost/internal/geom"
)

// FingerPadRadius is added to a target's size for every exposed edge.
const FingerPadRadius = 0.7

// Handedness says which hand operates a section, or where a mouse pad sits.
type Handedness int

const (
	Left Handedness = iota
	Right
	Both
)

func (h Handedness) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("handedness(%d)", int(h))
	}
}

// ParseHandedness accepts left, right, both (or ambidextrous).
func ParseHandedness(s string) (Handedness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "both", "ambidextrous", "center":
		return Both, nil
	}
	return 0, fmt.Errorf("unknown handedness %q (use left, right or both)", s)
}

// Sides is a set of target edges.
type Sides uint8

const (
	SideLeft Sides = 1 << iota
	SideTop
	SideRight
	SideBottom

	NoSides  Sides = 0
	AllSides       = SideLeft | SideTop | SideRight | SideBottom
)

// Has reports whether every edge in o is in s.
func (s Sides) Has(o Sides) bool {
	return s&o == o
}

var sideNames = []struct {
	side Sides
	name string
}{
	{SideLeft, "left"},
	{SideTop, "top"},
	{SideRight, "right"},
	{SideBottom, "bottom"},
}

// Names lists the edges in left, top, right, bottom order.
func (s Sides) Names() []string {
	var out []string
	for _, sn := range sideNames {
		if s.Has(sn.side) {
			out = append(out, sn.name)
		}
	}
	return out
}

func (s Sides) String() string {
	names := s.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseSides builds a set from edge names.
func ParseSides(names []string) (Sides, error) {
	var s Sides
	for _, name := range names {
		found := false
		for _, sn := range sideNames {
			if strings.EqualFold(strings.TrimSpace(name), sn.name) {
				s |= sn.side
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown edge %q", name)
		}
	}
	return s, nil
}

// Target is a single pressable key.
type Target struct {
	Name    string
	Size    geom.Size
	Exposed Sides
	// Section indexes the owning section in the layout.
	Section int
	// Twin marks the lower-case copy of a letter key.
	Twin bool
}

// EffectiveWidth grows the physical width by the finger pad radius per exposed side edge.
func (t Target) EffectiveWidth() float64 {
	w := t.Size.Width
	if t.Exposed.Has(SideLeft) {
		w += FingerPadRadius
	}
	if t.Exposed.Has(SideRight) {
		w += FingerPadRadius
	}
	return w
}

// EffectiveHeight grows the physical height by the finger pad radius per exposed top/bottom edge.
func (t Target) EffectiveHeight() float64 {
	h := t.Size.Height
	if t.Exposed.Has(SideTop) {
		h += FingerPadRadius
	}
	if t.Exposed.Has(SideBottom) {
		h += FingerPadRadius
	}
	return h
}

// EffectiveApproachWidth is the Fitts's-law width of the target.
func (t Target) EffectiveApproachWidth() float64 {
	return fitts.TargetApproachWidth(t.EffectiveWidth(), t.EffectiveHeight())
}

// ExposedCornerCount counts corners where both adjoining edges are exposed.
func (t Target) ExposedCornerCount() int {
	n := 0
	for _, vertical := range []Sides{SideTop, SideBottom} {
		if !t.Exposed.Has(vertical) {
			continue
		}
		if t.Exposed.Has(SideLeft) {
			n++
		}
		if t.Exposed.Has(SideRight) {
			n++
		}
	}
	return n
}

// ExposedEdgeCount counts exposed edges.
func (t Target) ExposedEdgeCount() int {
	return len(t.Exposed.Names())
}

// Section is a named group of targets sharing a center and handedness.
type Section struct {
	Name    string
	Center  geom.Point
	Size    geom.Size
	Hand    Handedness
	Targets []int
}

// DuplicateRule resolves a key name that exists in more than one section.
// When the right hand was last active in one of NearSections the key is taken
// from Preferred, otherwise from Default. Without any right-hand history the
// first match in section order wins.
type DuplicateRule struct {
	Name         string
	Preferred    string
	Default      string
	NearSections []string
}

type duplicate struct {
	rule      DuplicateRule
	preferred int
	fallback  int
	near      map[int]struct{}
}

// Layout is an immutable device model.
type Layout struct {
	name       string
	size       geom.Size
	standard   geom.Size
	targets    []Target
	sections   []Section
	homeLeft   int
	homeRight  int
	aliases    map[string]string
	duplicates map[string]duplicate
	byName     map[string][]int
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Size is the device size. Its height is also where an embedded or centered
// pointing device starts.
func (l *Layout) Size() geom.Size { return l.size }

// StandardKeySize is the default key size used when the layout was built.
func (l *Layout) StandardKeySize() geom.Size { return l.standard }

// Target returns the target at index i.
func (l *Layout) Target(i int) Target { return l.targets[i] }

// TargetCount returns the number of targets.
func (l *Layout) TargetCount() int { return len(l.targets) }

// Section returns a copy of the section at index i.
func (l *Layout) Section(i int) Section {
	s := l.sections[i]
	s.Targets = slices.Clone(s.Targets)
	return s
}

// SectionCount returns the number of sections.
func (l *Layout) SectionCount() int { return len(l.sections) }

// SectionOf returns the owning section of target i.
func (l *Layout) SectionOf(i int) Section { return l.sections[l.targets[i].Section] }

// HomeLeft returns the index of the left home-row section.
func (l *Layout) HomeLeft() int { return l.homeLeft }

// HomeRight returns the index of the right home-row section.
func (l *Layout) HomeRight() int { return l.homeRight }

// SectionIndex finds a section by name.
func (l *Layout) SectionIndex(name string) (int, bool) {
	for i, s := range l.sections {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Aliases returns a copy of the alias table.
func (l *Layout) Aliases() map[string]string {
	out := make(map[string]string, len(l.aliases))
	for k, v := range l.aliases {
		out[k] = v
	}
	return out
}

// DuplicateRules returns the configured duplicate rules.
func (l *Layout) DuplicateRules() []DuplicateRule {
	out := make([]DuplicateRule, 0, len(l.duplicates))
	for _, d := range l.duplicates {
		out = append(out, d.rule)
	}
	sortRules(out)
	return out
}

// Canonical maps a recorded key name to the name used in the layout. A single
// digit becomes the digit-row name ("1" -> "D1") and aliases are applied.
func (l *Layout) Canonical(name string) string {
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		name = "D" + name
	}
	if to, ok := l.aliases[name]; ok {
		return to
	}
	return name
}

// Lookup resolves a key name to a target index. lastRight is the section of
// the last right-hand press, or -1 when there is none.
func (l *Layout) Lookup(name string, lastRight int) (int, bool) {
	name = l.Canonical(name)
	if d, ok := l.duplicates[name]; ok && lastRight >= 0 {
		sec := d.fallback
		if _, near := d.near[lastRight]; near {
			sec = d.preferred
		}
		if idx, ok := l.findInSection(sec, name); ok {
			return idx, true
		}
	}
	matches := l.byName[name]
	if len(matches) == 0 {
		return -1, false
	}
	return matches[0], true
}

func (l *Layout) findInSection(section int, name string) (int, bool) {
	for _, idx := range l.sections[section].Targets {
		if l.targets[idx].Name == name {
			return idx, true
		}
	}
	return -1, false
}
