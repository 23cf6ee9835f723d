package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/stepcost/internal/device"
	"github.com/verte-zerg/stepcost/internal/event"
	"github.com/verte-zerg/stepcost/internal/follow"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/recording"
	"github.com/verte-zerg/stepcost/internal/score"
	"github.com/verte-zerg/stepcost/internal/stats"
	"github.com/verte-zerg/stepcost/internal/tui"
)

var (
	scoreSave     bool
	scoreName     string
	scorePerEvent bool
	scoreKeys     bool

	followView bool
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <recording.jsonl>",
		Short: "Score a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE:  runScoreCmd,
	}
	cmd.Flags().BoolVar(&scoreSave, "save", false, "store the session in the history")
	cmd.Flags().StringVar(&scoreName, "name", "", "session name (default: file name)")
	cmd.Flags().BoolVar(&scorePerEvent, "per-event", false, "print the score of every event")
	cmd.Flags().BoolVar(&scoreKeys, "keys", false, "print per-key costs")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	events, err := recording.ReadFile(path)
	if err != nil {
		return err
	}
	session, err := scoreEvents(events, sessionName(scoreName, path), path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if scorePerEvent {
		if err := renderPerEvent(out, events, session.Results); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.RenderSession(out, session); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if scoreKeys {
		if err := stats.RenderKeyTable(out, keyAggregates(session.Keys)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if scoreSave {
		return saveSession(session)
	}
	return nil
}

// scoreEvents runs one pass over events and summarizes it.
func scoreEvents(events []event.Event, name, source string) (stats.Session, error) {
	kb, err := newKeyboard(scoring)
	if err != nil {
		return stats.Session{}, err
	}
	pass, err := score.Score(kb, events)
	if err != nil {
		return stats.Session{}, fmt.Errorf("failed to score session: %w", err)
	}
	misses := kb.LookupMisses()
	if len(misses) > 0 {
		logErrf("keys not on the %s layout (scored 0): %s\n", kb.Layout().Name(), strings.Join(device.MissedKeys(misses), ", "))
	}
	session := stats.Summarize(kb.Layout(), events, pass, misses)
	session.Stats.Name = name
	session.Stats.Source = source
	session.Stats.MousePosition = scoring.MousePosition
	return session, nil
}

func saveSession(session stats.Session) error {
	if session.Stats.Events == 0 {
		logErrln("empty session; not saved")
		return nil
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	id, err := st.InsertSession(context.Background(), session.Stats, session.Keys)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logErrf("Saved session %d\n", id)
	return nil
}

func sessionName(name, path string) string {
	if name != "" {
		return name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func keyAggregates(keys []model.KeyStats) []model.KeyAggregate {
	out := make([]model.KeyAggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.KeyAggregate(k))
	}
	return out
}

func renderPerEvent(w io.Writer, events []event.Event, results []score.Result) error {
	for i, r := range results {
		e := events[i]
		subject := ""
		switch e.Kind {
		case event.KeyDown:
			subject = layout.Label(e.Key)
		case event.MouseDown, event.MouseMove:
			subject = fmt.Sprintf("%.0f,%.0f", e.Position.X, e.Position.Y)
		case event.MouseWheel:
			subject = fmt.Sprintf("%d", e.Detents)
		}
		line := fmt.Sprintf("%5d  %-11s %-14s %8.3f", r.Index, e.Kind, subject, r.Score)
		if r.Transition > 0 {
			line += fmt.Sprintf("  (transition %.3f)", r.Transition)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <recording.jsonl>",
		Short: "Browse a scored session",
		Args:  cobra.ExactArgs(1),
		RunE:  runViewCmd,
	}
}

func runViewCmd(_ *cobra.Command, args []string) error {
	path := args[0]
	events, err := recording.ReadFile(path)
	if err != nil {
		return err
	}
	session, err := scoreEvents(events, sessionName("", path), path)
	if err != nil {
		return err
	}
	rows := make([]tui.Row, len(events))
	for i, e := range events {
		rows[i] = tui.Row{Event: e, Result: session.Results[i]}
	}
	m := tui.NewModel(session.Stats.Name, rows, false)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newFollowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follow <recording.jsonl>",
		Short: "Score a recording live as it grows",
		Args:  cobra.ExactArgs(1),
		RunE:  runFollowCmd,
	}
	cmd.Flags().BoolVar(&followView, "view", false, "show the live session viewer")
	return cmd
}

func runFollowCmd(cmd *cobra.Command, args []string) error {
	kb, err := newKeyboard(scoring)
	if err != nil {
		return err
	}
	f := follow.New(args[0], kb, follow.Options{Logger: logger})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !followView {
		out := cmd.OutOrStdout()
		err := f.Run(ctx, func(u follow.Update) error {
			_, err := fmt.Fprintf(out, "%5d  %-11s %-14s %8.3f  total %.3f\n",
				u.Result.Index, u.Event.Kind, layout.Label(u.Event.Key), u.Result.Score, u.Total)
			return err
		})
		if skipped := f.Skipped(); skipped > 0 {
			logErrf("skipped %d unreadable lines\n", skipped)
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	program := tea.NewProgram(tui.NewModel(sessionName("", args[0]), nil, true), tea.WithAltScreen())
	errCh := make(chan error, 1)
	go func() {
		errCh <- f.Run(ctx, func(u follow.Update) error {
			program.Send(tui.RowMsg{Event: u.Event, Result: u.Result})
			return nil
		})
		program.Quit()
	}()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	cancel()
	return <-errCh
}
