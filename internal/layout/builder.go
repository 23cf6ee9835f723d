package layout

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/stepcost/internal/geom"
)

// Builder assembles a Layout. Errors are collected and reported by Build.
type Builder struct {
	name      string
	size      geom.Size
	standard  geom.Size
	sections  []*SectionBuilder
	homeLeft  string
	homeRight string
	aliases   map[string]string
	rules     []DuplicateRule
	errs      []error
}

// SectionBuilder adds targets to one section.
type SectionBuilder struct {
	b       *Builder
	section Section
	targets []Target
}

// NewBuilder starts a layout with the given device size and standard key size.
func NewBuilder(name string, size, standardKey geom.Size) *Builder {
	return &Builder{
		name:     name,
		size:     size,
		standard: standardKey,
		aliases:  map[string]string{},
	}
}

// Section appends a section. Section order is the lookup order.
func (b *Builder) Section(name string, center geom.Point, size geom.Size, hand Handedness) *SectionBuilder {
	sb := &SectionBuilder{
		b: b,
		section: Section{
			Name:   name,
			Center: center,
			Size:   size,
			Hand:   hand,
		},
	}
	b.sections = append(b.sections, sb)
	return sb
}

// HomeRows names the sections where each hand rests.
func (b *Builder) HomeRows(left, right string) *Builder {
	b.homeLeft = left
	b.homeRight = right
	return b
}

// Alias makes from resolve to the key named to.
func (b *Builder) Alias(from, to string) *Builder {
	b.aliases[from] = to
	return b
}

// Duplicate registers a rule for a key present in more than one section.
func (b *Builder) Duplicate(rule DuplicateRule) *Builder {
	b.rules = append(b.rules, rule)
	return b
}

// Key adds a standard-size key.
func (s *SectionBuilder) Key(name string, exposed Sides) *SectionBuilder {
	return s.KeySized(name, exposed, s.b.standard)
}

// Keys adds standard-size keys with no exposed edges.
func (s *SectionBuilder) Keys(names ...string) *SectionBuilder {
	for _, name := range names {
		s.Key(name, NoSides)
	}
	return s
}

// KeySized adds a key of the given size. A single letter adds both its upper
// and lower case forms at the same position.
func (s *SectionBuilder) KeySized(name string, exposed Sides, size geom.Size) *SectionBuilder {
	if name == "" {
		s.b.errs = append(s.b.errs, fmt.Errorf("section %q: empty key name", s.section.Name))
		return s
	}
	if size.Width <= 0 || size.Height <= 0 {
		s.b.errs = append(s.b.errs, fmt.Errorf("section %q: key %q has non-positive size %vx%v", s.section.Name, name, size.Width, size.Height))
		return s
	}
	r, n := utf8.DecodeRuneInString(name)
	if n == len(name) && unicode.IsLetter(r) {
		s.targets = append(s.targets,
			Target{Name: string(unicode.ToUpper(r)), Size: size, Exposed: exposed},
			Target{Name: string(unicode.ToLower(r)), Size: size, Exposed: exposed, Twin: true},
		)
		return s
	}
	s.targets = append(s.targets, Target{Name: name, Size: size, Exposed: exposed})
	return s
}

// Build validates and freezes the layout.
func (b *Builder) Build() (*Layout, error) {
	errs := append([]error(nil), b.errs...)
	if len(b.sections) == 0 {
		errs = append(errs, errors.New("layout has no sections"))
	}
	if b.size.Width <= 0 || b.size.Height <= 0 {
		errs = append(errs, fmt.Errorf("layout size must be positive, got %vx%v", b.size.Width, b.size.Height))
	}

	l := &Layout{
		name:       b.name,
		size:       b.size,
		standard:   b.standard,
		homeLeft:   -1,
		homeRight:  -1,
		aliases:    make(map[string]string, len(b.aliases)),
		duplicates: map[string]duplicate{},
		byName:     map[string][]int{},
	}
	sectionIdx := map[string]int{}
	for i, sb := range b.sections {
		if _, dup := sectionIdx[sb.section.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate section name %q", sb.section.Name))
		}
		sectionIdx[sb.section.Name] = i
		sec := sb.section
		sec.Targets = make([]int, 0, len(sb.targets))
		seen := map[string]struct{}{}
		for _, t := range sb.targets {
			if _, dup := seen[t.Name]; dup {
				errs = append(errs, fmt.Errorf("section %q: duplicate key %q", sec.Name, t.Name))
				continue
			}
			seen[t.Name] = struct{}{}
			t.Section = i
			l.targets = append(l.targets, t)
			idx := len(l.targets) - 1
			sec.Targets = append(sec.Targets, idx)
			l.byName[t.Name] = append(l.byName[t.Name], idx)
		}
		l.sections = append(l.sections, sec)
	}

	var ok bool
	if l.homeLeft, ok = sectionIdx[b.homeLeft]; !ok {
		errs = append(errs, fmt.Errorf("left home section %q not found", b.homeLeft))
	}
	if l.homeRight, ok = sectionIdx[b.homeRight]; !ok {
		errs = append(errs, fmt.Errorf("right home section %q not found", b.homeRight))
	}

	for from, to := range b.aliases {
		if _, ok := l.byName[to]; !ok {
			errs = append(errs, fmt.Errorf("alias %q points at unknown key %q", from, to))
			continue
		}
		l.aliases[from] = to
	}

	for _, rule := range b.rules {
		d := duplicate{rule: rule, near: map[int]struct{}{}}
		if d.preferred, ok = sectionIdx[rule.Preferred]; !ok {
			errs = append(errs, fmt.Errorf("duplicate rule %q: unknown preferred section %q", rule.Name, rule.Preferred))
			continue
		}
		if d.fallback, ok = sectionIdx[rule.Default]; !ok {
			errs = append(errs, fmt.Errorf("duplicate rule %q: unknown default section %q", rule.Name, rule.Default))
			continue
		}
		for _, name := range rule.NearSections {
			idx, ok := sectionIdx[name]
			if !ok {
				errs = append(errs, fmt.Errorf("duplicate rule %q: unknown near section %q", rule.Name, name))
				continue
			}
			d.near[idx] = struct{}{}
		}
		l.duplicates[rule.Name] = d
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid layout %q: %w", b.name, errors.Join(errs...))
	}
	// Lookup falls back to section order, which is also index order.
	for name, idxs := range l.byName {
		sort.Ints(idxs)
		l.byName[name] = idxs
	}
	return l, nil
}

func sortRules(rules []DuplicateRule) {
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name < rules[j].Name
	})
}
