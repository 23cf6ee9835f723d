// Package recording reads and writes event sequences as JSON Lines, one
// event object per line.
package recording

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/geom"
)

// ErrDecreasingStart is returned when an event starts before the one before it.
var ErrDecreasingStart = errors.New("event start goes back in time")

const maxLineSize = 1 << 20

// Line is the JSON form of one event.
type Line struct {
	Kind    string       `json:"kind"`
	Start   time.Time    `json:"start"`
	Stop    time.Time    `json:"stop"`
	Key     string       `json:"key,omitempty"`
	Shift   bool         `json:"shift,omitempty"`
	X       float64      `json:"x,omitempty"`
	Y       float64      `json:"y,omitempty"`
	From    *geom.Point  `json:"from,omitempty"`
	Path    []geom.Point `json:"path,omitempty"`
	Detents int          `json:"detents,omitempty"`
}

// Decode parses one line into an event.
func Decode(data []byte) (event.Event, error) {
	var l Line
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return event.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	kind, err := event.ParseKind(l.Kind)
	if err != nil {
		return event.Event{}, err
	}
	if l.Start.IsZero() {
		return event.Event{}, fmt.Errorf("%s event has no start time", kind)
	}
	stop := l.Stop
	if stop.IsZero() {
		stop = l.Start
	}
	e := event.Event{
		Kind:     kind,
		Start:    l.Start,
		Stop:     stop,
		Key:      l.Key,
		Shift:    l.Shift,
		Position: geom.Pt(l.X, l.Y),
		Path:     l.Path,
		Detents:  l.Detents,
	}
	if l.From != nil {
		e.From = *l.From
	}
	switch kind {
	case event.KeyDown:
		if e.Key == "" {
			return event.Event{}, fmt.Errorf("key-down event has no key")
		}
	case event.MouseMove:
		if l.From == nil {
			e.From = e.Position
		}
	}
	return e, nil
}

// Encode renders e as a single JSON line without the trailing newline.
func Encode(e event.Event) ([]byte, error) {
	l := Line{
		Kind:  e.Kind.String(),
		Start: e.Start,
		Stop:  e.Stop,
	}
	switch e.Kind {
	case event.KeyDown:
		l.Key = e.Key
		l.Shift = e.Shift
	case event.MouseDown:
		l.X, l.Y = e.Position.X, e.Position.Y
	case event.MouseMove:
		from := e.From
		l.From = &from
		l.Path = e.Path
		l.X, l.Y = e.Position.X, e.Position.Y
	case event.MouseWheel:
		l.Detents = e.Detents
	default:
		return nil, fmt.Errorf("cannot encode event of %s", e.Kind)
	}
	return json.Marshal(l)
}

// Reader decodes events from a stream and checks their order.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	last    time.Time
	seen    bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event, or io.EOF at the end of the stream. Blank
// lines and lines starting with '#' are skipped.
func (r *Reader) Next() (event.Event, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 || data[0] == '#' {
			continue
		}
		e, err := Decode(data)
		if err != nil {
			return event.Event{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		if r.seen && e.Start.Before(r.last) {
			return event.Event{}, fmt.Errorf("line %d: %w", r.line, ErrDecreasingStart)
		}
		r.seen = true
		r.last = e.Start
		return e, nil
	}
	if err := r.scanner.Err(); err != nil {
		return event.Event{}, fmt.Errorf("failed to read events: %w", err)
	}
	return event.Event{}, io.EOF
}

// ReadAll decodes every event in r.
func ReadAll(r io.Reader) ([]event.Event, error) {
	reader := NewReader(r)
	var events []event.Event
	for {
		e, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
}

// ReadFile decodes every event in the file at path.
func ReadFile(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadAll(f)
}

// Writer encodes events as JSON Lines.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer over w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one event.
func (w *Writer) Write(e event.Event) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteFile writes events to path, replacing it atomically.
func WriteFile(path string, events []event.Event) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "recording-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp recording: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	w := NewWriter(tmp)
	for _, e := range events {
		if err := w.Write(e); err != nil {
			return fmt.Errorf("failed to write recording: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush recording: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close recording: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
