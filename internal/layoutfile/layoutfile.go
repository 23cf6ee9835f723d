// Package layoutfile loads and exports device layouts as YAML, TOML or JSON
// documents. Documents are checked against an embedded JSON schema before
// they are built into a layout.Layout.
package layoutfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/stepcost/internal/geom"
	"github.com/verte-zerg/stepcost/internal/layout"
)

//go:embed schema.json
var schemaData []byte

const schemaURL = "layout.schema.json"

// Format is a document encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{YAML, TOML, JSON}

// ParseFormat accepts yaml, yml, toml or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("unknown layout format %q (use yaml, toml or json)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Description is the document form of a layout. Lengths are in centimeters.
type Description struct {
	Name        string            `json:"name" yaml:"name" toml:"name"`
	Size        geom.Size         `json:"size" yaml:"size" toml:"size"`
	StandardKey geom.Size         `json:"standard-key" yaml:"standard-key" toml:"standard-key"`
	HomeLeft    string            `json:"home-left" yaml:"home-left" toml:"home-left"`
	HomeRight   string            `json:"home-right" yaml:"home-right" toml:"home-right"`
	Aliases     map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
	Sections    []Section         `json:"sections" yaml:"sections" toml:"sections"`
	Duplicates  []Duplicate       `json:"duplicates,omitempty" yaml:"duplicates,omitempty" toml:"duplicates,omitempty"`
}

// Section describes one group of keys.
type Section struct {
	Name   string     `json:"name" yaml:"name" toml:"name"`
	Center geom.Point `json:"center" yaml:"center" toml:"center"`
	Size   geom.Size  `json:"size" yaml:"size" toml:"size"`
	Hand   string     `json:"hand" yaml:"hand" toml:"hand"`
	Keys   []Key      `json:"keys" yaml:"keys" toml:"keys"`
}

// Key describes one key. Size defaults to the standard key size. A single
// letter stands for both of its cases.
type Key struct {
	Name  string     `json:"name" yaml:"name" toml:"name"`
	Edges []string   `json:"edges,omitempty" yaml:"edges,omitempty,flow" toml:"edges,omitempty"`
	Size  *geom.Size `json:"size,omitempty" yaml:"size,omitempty,flow" toml:"size,omitempty"`
}

// Duplicate describes a layout.DuplicateRule.
type Duplicate struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Preferred string   `json:"preferred" yaml:"preferred" toml:"preferred"`
	Default   string   `json:"default" yaml:"default" toml:"default"`
	Near      []string `json:"near,omitempty" yaml:"near,omitempty,flow" toml:"near,omitempty"`
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("failed to add layout schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Parse decodes and validates a document.
func Parse(data []byte, format Format) (Description, error) {
	var raw any
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Description{}, fmt.Errorf("failed to decode yaml layout: %w", err)
		}
	case TOML:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return Description{}, fmt.Errorf("failed to decode toml layout: %w", err)
		}
		raw = tree.ToMap()
	case JSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return Description{}, fmt.Errorf("failed to decode json layout: %w", err)
		}
	default:
		return Description{}, fmt.Errorf("unknown layout format %q", format)
	}

	// Every format is normalized to JSON values so one schema covers them all.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return Description{}, fmt.Errorf("failed to normalize layout: %w", err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return Description{}, fmt.Errorf("failed to normalize layout: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return Description{}, err
	}
	if err := schema.Validate(instance); err != nil {
		return Description{}, fmt.Errorf("invalid layout document: %w", err)
	}

	var desc Description
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return Description{}, fmt.Errorf("failed to decode layout: %w", err)
	}
	return desc, nil
}

// Build turns a description into an immutable layout.
func Build(desc Description) (*layout.Layout, error) {
	b := layout.NewBuilder(desc.Name, desc.Size, desc.StandardKey)
	var errs []error
	for _, s := range desc.Sections {
		hand, err := layout.ParseHandedness(s.Hand)
		if err != nil {
			errs = append(errs, fmt.Errorf("section %q: %w", s.Name, err))
			continue
		}
		sb := b.Section(s.Name, s.Center, s.Size, hand)
		for _, k := range s.Keys {
			edges, err := layout.ParseSides(k.Edges)
			if err != nil {
				errs = append(errs, fmt.Errorf("section %q key %q: %w", s.Name, k.Name, err))
				continue
			}
			size := desc.StandardKey
			if k.Size != nil {
				size = *k.Size
			}
			sb.KeySized(k.Name, edges, size)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid layout %q: %w", desc.Name, errors.Join(errs...))
	}
	b.HomeRows(desc.HomeLeft, desc.HomeRight)
	for from, to := range desc.Aliases {
		b.Alias(from, to)
	}
	for _, d := range desc.Duplicates {
		b.Duplicate(layout.DuplicateRule{
			Name:         d.Name,
			Preferred:    d.Preferred,
			Default:      d.Default,
			NearSections: d.Near,
		})
	}
	return b.Build()
}

// Load reads, validates and builds the layout file at path.
func Load(path string) (*layout.Layout, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	desc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l, err := Build(desc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Open resolves a layout reference: empty or "natural" is the built-in
// keyboard, an existing file is loaded, and anything else is looked up by
// name in dir.
func Open(ref, dir string) (*layout.Layout, error) {
	if ref == "" || ref == layout.NaturalName {
		return layout.Natural(), nil
	}
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		path := filepath.Join(dir, ref+ext)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, fmt.Errorf("layout %q not found (looked for a file and in %s)", ref, dir)
}

// Describe converts a layout back into its document form. Lower-case letter
// twins are implied by their upper-case key and left out.
func Describe(l *layout.Layout) Description {
	std := l.StandardKeySize()
	desc := Description{
		Name:        l.Name(),
		Size:        l.Size(),
		StandardKey: std,
		HomeLeft:    l.Section(l.HomeLeft()).Name,
		HomeRight:   l.Section(l.HomeRight()).Name,
	}
	if aliases := l.Aliases(); len(aliases) > 0 {
		desc.Aliases = aliases
	}
	for i := 0; i < l.SectionCount(); i++ {
		s := l.Section(i)
		sd := Section{
			Name:   s.Name,
			Center: s.Center,
			Size:   s.Size,
			Hand:   s.Hand.String(),
		}
		for _, idx := range s.Targets {
			t := l.Target(idx)
			if t.Twin {
				continue
			}
			kd := Key{Name: t.Name, Edges: t.Exposed.Names()}
			if t.Size != std {
				size := t.Size
				kd.Size = &size
			}
			sd.Keys = append(sd.Keys, kd)
		}
		desc.Sections = append(desc.Sections, sd)
	}
	for _, r := range l.DuplicateRules() {
		desc.Duplicates = append(desc.Duplicates, Duplicate{
			Name:      r.Name,
			Preferred: r.Preferred,
			Default:   r.Default,
			Near:      r.NearSections,
		})
	}
	return desc
}

// Encode writes desc to w in the given format.
func Encode(w io.Writer, desc Description, format Format) error {
	var data []byte
	var err error
	switch format {
	case JSON:
		data, err = json.MarshalIndent(desc, "", "  ")
		data = append(data, '\n')
	case YAML:
		data, err = yaml.Marshal(desc)
	case TOML:
		data, err = toml.Marshal(desc)
	default:
		return fmt.Errorf("unknown layout format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s layout: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
