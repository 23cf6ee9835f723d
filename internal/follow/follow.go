// Package follow scores a recording file live while another process appends to it.
package follow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/stepcost/internal/device"
	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/recording"
	"github.com/verte-zerg/stepcost/internal/score"
)

// DefaultPollInterval is how often the file is re-read when no change
// notification arrives.
const DefaultPollInterval = 2 * time.Second

// Update is one newly scored event.
type Update struct {
	Line   int
	Event  event.Event
	Result score.Result
	// Total and Transitions are running sums after this event.
	Total       float64
	Transitions float64
}

// Handler receives updates in file order. Returning an error stops Run.
type Handler func(Update) error

// Follower tails a JSON Lines recording and scores each complete line once.
type Follower struct {
	path   string
	model  device.Model
	logger *slog.Logger
	poll   time.Duration

	scorer  *score.Scorer
	offset  int64
	line    int
	partial []byte
	skipped int
}

// Options tune a Follower.
type Options struct {
	Logger *slog.Logger
	// PollInterval is DefaultPollInterval when zero.
	PollInterval time.Duration
}

// New returns a Follower for the recording at path scored with m.
func New(path string, m device.Model, opts Options) *Follower {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Follower{
		path:   path,
		model:  m,
		logger: logger,
		poll:   poll,
		scorer: score.New(m),
	}
}

// Total is the running score.
func (f *Follower) Total() float64 { return f.scorer.Total() }

// Count is the number of events scored.
func (f *Follower) Count() int { return f.scorer.Count() }

// Skipped is the number of lines that could not be decoded or scored.
func (f *Follower) Skipped() int { return f.skipped }

// Poll reads whatever was appended since the last call and scores every
// complete line. A trailing line without a newline is kept for later. When
// the file shrinks it is treated as a new recording and scoring restarts.
func (f *Follower) Poll(fn Handler) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat recording: %w", err)
	}
	if info.Size() < f.offset {
		f.logger.Info("recording truncated, restarting", "path", f.path, "size", info.Size(), "offset", f.offset)
		f.reset()
	}
	if info.Size() == f.offset {
		return nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek recording: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}
	f.offset += int64(len(data))

	buf := append(f.partial, data...)
	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		line := buf[:idx]
		buf = buf[idx+1:]
		f.line++
		if err := f.handle(line, fn); err != nil {
			f.partial = append([]byte(nil), buf...)
			return err
		}
	}
	f.partial = append([]byte(nil), buf...)
	return nil
}

func (f *Follower) handle(line []byte, fn Handler) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] == '#' {
		return nil
	}
	e, err := recording.Decode(line)
	if err != nil {
		f.skipped++
		f.logger.Warn("skipping malformed event", "line", f.line, "err", err)
		return nil
	}
	res, err := f.scorer.Next(e)
	if err != nil {
		f.skipped++
		f.logger.Warn("skipping unscorable event", "line", f.line, "err", err)
		return nil
	}
	f.logger.Debug("scored event", "line", f.line, "kind", e.Kind, "score", res.Score)
	return fn(Update{
		Line:        f.line,
		Event:       e,
		Result:      res,
		Total:       f.scorer.Total(),
		Transitions: f.scorer.Transitions(),
	})
}

func (f *Follower) reset() {
	f.scorer = score.New(f.model)
	f.offset = 0
	f.line = 0
	f.partial = nil
}

// Run polls once, then again on every change to the file and every poll
// interval, until ctx is done. It returns nil when ctx is canceled.
func (f *Follower) Run(ctx context.Context, fn Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absPath, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	// The directory is watched so the file may be created or replaced later.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	if err := f.pollIfExists(fn); err != nil {
		return err
	}

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != absPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := f.pollIfExists(fn); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watcher error", "err", err)
		case <-ticker.C:
			if err := f.pollIfExists(fn); err != nil {
				return err
			}
		}
	}
}

func (f *Follower) pollIfExists(fn Handler) error {
	err := f.Poll(fn)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Debug("recording not created yet", "path", f.path)
		return nil
	}
	return err
}
