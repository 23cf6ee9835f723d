package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/stepcost/internal/geom"
)

func TestEffectiveSizeNeverShrinks(t *testing.T) {
	l := Natural()
	for i := 0; i < l.TargetCount(); i++ {
		tg := l.Target(i)
		horizontal := tg.Exposed.Has(SideLeft) || tg.Exposed.Has(SideRight)
		vertical := tg.Exposed.Has(SideTop) || tg.Exposed.Has(SideBottom)
		if tg.EffectiveWidth() < tg.Size.Width || tg.EffectiveHeight() < tg.Size.Height {
			t.Fatalf("%s: effective size smaller than physical", tg.Name)
		}
		if (tg.EffectiveWidth() == tg.Size.Width) == horizontal {
			t.Fatalf("%s: width equality must match unexposed left/right edges", tg.Name)
		}
		if (tg.EffectiveHeight() == tg.Size.Height) == vertical {
			t.Fatalf("%s: height equality must match unexposed top/bottom edges", tg.Name)
		}
	}
}

func TestEffectiveDimensions(t *testing.T) {
	tg := Target{Size: geom.Size{Width: 1.8, Height: 1.8}, Exposed: SideLeft | SideRight | SideTop}
	assert.InDelta(t, 3.2, tg.EffectiveWidth(), 1e-9)
	assert.InDelta(t, 2.5, tg.EffectiveHeight(), 1e-9)
	assert.Equal(t, 2, tg.ExposedCornerCount())
	assert.Equal(t, 3, tg.ExposedEdgeCount())

	all := Target{Size: geom.Size{Width: 2.4, Height: 1.5}, Exposed: AllSides}
	assert.Equal(t, 4, all.ExposedCornerCount())
	assert.Equal(t, 4, all.ExposedEdgeCount())

	none := Target{Size: geom.Size{Width: 1.8, Height: 1.8}}
	assert.Equal(t, 0, none.ExposedCornerCount())
	assert.Equal(t, 0, none.ExposedEdgeCount())
}

func TestTargetsPointBackToOwningSection(t *testing.T) {
	l := Natural()
	owners := make(map[int]int)
	for s := 0; s < l.SectionCount(); s++ {
		for _, idx := range l.Section(s).Targets {
			if prev, ok := owners[idx]; ok {
				t.Fatalf("target %d owned by sections %d and %d", idx, prev, s)
			}
			owners[idx] = s
			if l.Target(idx).Section != s {
				t.Fatalf("target %s points at section %d, owned by %d", l.Target(idx).Name, l.Target(idx).Section, s)
			}
		}
	}
	if len(owners) != l.TargetCount() {
		t.Fatalf("expected every target owned once, got %d of %d", len(owners), l.TargetCount())
	}
}

func TestSectionTargetsAreCopied(t *testing.T) {
	l := Natural()
	first := l.Section(0)
	want := l.Section(0).Targets[0]
	first.Targets[0] = -1
	first.Targets = append(first.Targets, -1)
	again := l.Section(0)
	assert.Equal(t, want, again.Targets[0])
	assert.Len(t, again.Targets, len(first.Targets)-1)
}

func TestLetterKeysHaveBothCases(t *testing.T) {
	l := Natural()
	upper, ok := l.Lookup("Q", -1)
	if !ok {
		t.Fatalf("expected Q")
	}
	lower, ok := l.Lookup("q", -1)
	if !ok {
		t.Fatalf("expected q")
	}
	if upper == lower {
		t.Fatalf("expected distinct targets for Q and q")
	}
	if l.Target(upper).Section != l.Target(lower).Section {
		t.Fatalf("expected Q and q in the same section")
	}
	if !l.Target(lower).Twin || l.Target(upper).Twin {
		t.Fatalf("expected only the lower case copy to be marked as twin")
	}
}

func TestLookupDigitAlias(t *testing.T) {
	l := Natural()
	idx, ok := l.Lookup("7", -1)
	if !ok {
		t.Fatalf("expected digit 7 to resolve")
	}
	if got := l.Target(idx).Name; got != "D7" {
		t.Fatalf("expected D7, got %s", got)
	}
	if got := l.SectionOf(idx).Name; got != SectionNumbersRight {
		t.Fatalf("expected numbers-right, got %s", got)
	}
}

func TestLookupEnterReturnEquivalent(t *testing.T) {
	l := Natural()
	enter, ok := l.Lookup("Enter", -1)
	if !ok {
		t.Fatalf("expected Enter")
	}
	ret, ok := l.Lookup("Return", -1)
	if !ok {
		t.Fatalf("expected Return")
	}
	if enter != ret {
		t.Fatalf("expected Enter and Return to resolve to the same target")
	}
}

func TestLookupEnterFollowsRightHand(t *testing.T) {
	l := Natural()
	numpad, _ := l.SectionIndex(SectionNumPad)
	topRow, _ := l.SectionIndex(SectionNumPadTopRow)
	homeRight, _ := l.SectionIndex(SectionHomeRight)

	cases := []struct {
		lastRight int
		want      string
	}{
		{numpad, SectionNumPad},
		{topRow, SectionNumPad},
		{homeRight, SectionPunctuation},
		{-1, SectionNumPad},
	}
	for _, tc := range cases {
		for _, name := range []string{"Enter", "Return"} {
			idx, ok := l.Lookup(name, tc.lastRight)
			if !ok {
				t.Fatalf("expected %s to resolve", name)
			}
			if got := l.SectionOf(idx).Name; got != tc.want {
				t.Fatalf("%s after section %d: expected %s, got %s", name, tc.lastRight, tc.want, got)
			}
		}
	}
}

func TestLookupDeleteUsesSectionOrder(t *testing.T) {
	l := Natural()
	numpad, _ := l.SectionIndex(SectionNumPad)
	idx, ok := l.Lookup("Delete", numpad)
	if !ok {
		t.Fatalf("expected Delete")
	}
	if got := l.SectionOf(idx).Name; got != SectionExtendedNav {
		t.Fatalf("expected extended-nav Delete, got %s", got)
	}
}

func TestLookupMiss(t *testing.T) {
	if _, ok := Natural().Lookup("VolumeUp", -1); ok {
		t.Fatalf("expected unknown key to miss")
	}
}

func TestHomeSections(t *testing.T) {
	l := Natural()
	if l.Section(l.HomeLeft()).Name != SectionHomeLeft {
		t.Fatalf("unexpected left home section")
	}
	if l.Section(l.HomeRight()).Name != SectionHomeRight {
		t.Fatalf("unexpected right home section")
	}
	if l.Size().Width != 50 || l.Size().Height != 25.4 {
		t.Fatalf("unexpected keyboard size: %+v", l.Size())
	}
}

func TestBuilderReportsErrors(t *testing.T) {
	std := geom.Size{Width: 1.8, Height: 1.8}
	b := NewBuilder("broken", geom.Size{Width: 10, Height: 5}, std)
	b.Section("a", geom.Pt(1, 1), std, Left).
		Key("X", NoSides).
		KeySized("Wide", NoSides, geom.Size{Width: 0, Height: 1})
	b.Section("a", geom.Pt(2, 1), std, Right)
	b.HomeRows("a", "missing")
	b.Alias("Foo", "Bar")
	b.Duplicate(DuplicateRule{Name: "X", Preferred: "a", Default: "nowhere"})

	_, err := b.Build()
	if err == nil {
		t.Fatalf("expected build error")
	}
	for _, want := range []string{"non-positive size", "duplicate section", "missing", "unknown key \"Bar\"", "nowhere"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error: %v", want, err)
		}
	}
}

func TestParseHandednessAndSides(t *testing.T) {
	h, err := ParseHandedness("Right")
	if err != nil || h != Right {
		t.Fatalf("expected right, got %v (%v)", h, err)
	}
	if _, err := ParseHandedness("middle"); err == nil {
		t.Fatalf("expected error for unknown handedness")
	}
	s, err := ParseSides([]string{"top", "Left"})
	if err != nil {
		t.Fatalf("parse sides: %v", err)
	}
	if s != SideTop|SideLeft {
		t.Fatalf("unexpected sides %v", s)
	}
	if s.String() != "left|top" {
		t.Fatalf("unexpected sides string %q", s.String())
	}
	if _, err := ParseSides([]string{"diagonal"}); err == nil {
		t.Fatalf("expected error for unknown edge")
	}
}

func TestLabel(t *testing.T) {
	if Label("Oem1") != ";" || Label("D4") != "4" || Label("Space") != "Space" {
		t.Fatalf("unexpected labels")
	}
}
