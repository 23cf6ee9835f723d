package layoutfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/stepcost/internal/layout"
)

const splitYAML = `name: split
size: {width: 30, height: 12}
standard-key: {width: 1.8, height: 1.8}
home-left: left
home-right: right
aliases:
  Return: Enter
sections:
  - name: left
    center: {x: 5, y: 6}
    size: {width: 9, height: 5}
    hand: left
    keys:
      - name: A
        edges: [left]
      - name: S
  - name: right
    center: {x: 25, y: 6}
    size: {width: 9, height: 5}
    hand: right
    keys:
      - name: J
      - name: Enter
        edges: [right]
        size: {width: 2.2, height: 1.8}
  - name: thumb
    center: {x: 15, y: 10}
    size: {width: 10, height: 2}
    hand: both
    keys:
      - name: Space
        size: {width: 10, height: 1.8}
`

func TestParseYAML(t *testing.T) {
	desc, err := Parse([]byte(splitYAML), YAML)
	require.NoError(t, err)
	l, err := Build(desc)
	require.NoError(t, err)

	assert.Equal(t, "split", l.Name())
	assert.Equal(t, 3, l.SectionCount())
	// A, a, S, s, J, j, Enter, Space
	assert.Equal(t, 8, l.TargetCount())

	idx, ok := l.Lookup("Return", -1)
	require.True(t, ok)
	enter := l.Target(idx)
	assert.Equal(t, 2.2, enter.Size.Width)
	assert.InDelta(t, 2.2+layout.FingerPadRadius, enter.EffectiveWidth(), 1e-9)

	idx, ok = l.Lookup("a", -1)
	require.True(t, ok)
	assert.True(t, l.Target(idx).Twin)
	assert.Equal(t, layout.Both, l.SectionOf(mustLookup(t, l, "Space")).Hand)
}

func mustLookup(t *testing.T, l *layout.Layout, name string) int {
	t.Helper()
	idx, ok := l.Lookup(name, -1)
	require.True(t, ok, name)
	return idx
}

func TestSchemaRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"bad hand":      strings.Replace(splitYAML, "hand: both", "hand: middle", 1),
		"zero size":     strings.Replace(splitYAML, "size: {width: 30, height: 12}", "size: {width: 0, height: 12}", 1),
		"unknown field": splitYAML + "colour: red\n",
		"bad edge":      strings.Replace(splitYAML, "edges: [left]", "edges: [inside]", 1),
		"no sections":   "name: x\nsize: {width: 1, height: 1}\nstandard-key: {width: 1, height: 1}\nhome-left: a\nhome-right: b\nsections: []\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc), YAML); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestBuildReportsUnknownHomeRow(t *testing.T) {
	doc := strings.Replace(splitYAML, "home-right: right", "home-right: numpad", 1)
	desc, err := Parse([]byte(doc), YAML)
	require.NoError(t, err)
	_, err = Build(desc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numpad")
}

func TestNaturalRoundTripAllFormats(t *testing.T) {
	natural := layout.Natural()
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, Describe(natural), format))
			desc, err := Parse(buf.Bytes(), format)
			require.NoError(t, err)
			l, err := Build(desc)
			require.NoError(t, err)

			require.Equal(t, natural.TargetCount(), l.TargetCount())
			require.Equal(t, natural.SectionCount(), l.SectionCount())
			for i := 0; i < natural.TargetCount(); i++ {
				assert.Equal(t, natural.Target(i), l.Target(i))
			}
			for i := 0; i < natural.SectionCount(); i++ {
				assert.Equal(t, natural.Section(i), l.Section(i))
			}
			assert.Equal(t, natural.HomeLeft(), l.HomeLeft())
			assert.Equal(t, natural.HomeRight(), l.HomeRight())
			assert.Equal(t, natural.Aliases(), l.Aliases())
			assert.Equal(t, natural.DuplicateRules(), l.DuplicateRules())
		})
	}
}

func TestOpen(t *testing.T) {
	l, err := Open("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, layout.NaturalName, l.Name())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "split.yaml"), []byte(splitYAML), 0o644))
	l, err = Open("split", dir)
	require.NoError(t, err)
	assert.Equal(t, "split", l.Name())

	l, err = Open(filepath.Join(dir, "split.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "split", l.Name())

	_, err = Open("missing", dir)
	require.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.yml": YAML, "b.YAML": YAML, "c.toml": TOML, "d.json": JSON} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := FormatFromPath("layout.xml")
	require.Error(t, err)
}
