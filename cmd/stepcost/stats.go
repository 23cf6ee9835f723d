package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/stats"
	"github.com/verte-zerg/stepcost/internal/statsui"
	"github.com/verte-zerg/stepcost/internal/store"
)

var (
	statsLayout      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsKeys        string
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show scored session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLayout, "for-layout", "", "layout name filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsKeys, "keys", "", "key names for per-key curves, comma separated")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print to stdout instead of the interactive viewer")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Layout:      statsLayout,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Keys:        statsKeys,
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsPlain {
		return renderStatsPlain(cmd.OutOrStdout(), st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderStatsPlain(w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return err
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderHandCurves(w, report.Sessions, cfg.CurveWindow, 0, 10, false); err != nil {
		return err
	}
	if err := stats.RenderKeyTable(w, report.KeyAggsWindow); err != nil {
		return err
	}
	keys := splitKeys(cfg.Keys)
	if len(keys) == 0 {
		keys = stats.TopKeysByFrequency(report.KeyAggsAll, 3)
	}
	ids := make([]int64, len(report.Sessions))
	for i, s := range report.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := st.ListKeyStatsForSessions(ctx, ids, keys)
	if err != nil {
		return err
	}
	return stats.RenderKeyCurves(w, report.Sessions, perSession, keys, cfg.CurveWindow)
}

func splitKeys(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) == 1 && f[0] >= '0' && f[0] <= '9' {
			f = "D" + f
		}
		out = append(out, f)
	}
	return out
}
