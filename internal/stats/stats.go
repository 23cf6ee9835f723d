// Package stats contains session totals, history reporting and text rendering.
package stats

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := slices.Min(values), slices.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSession prints the totals of one scored session.
func RenderSession(w io.Writer, s Session) error {
	st := s.Stats
	rows := [][]string{
		{"Events", fmt.Sprintf("%d", st.Events)},
		{"Span", formatMs(st.SpanMs)},
		{"Score", fmt.Sprintf("%.2f", st.Score)},
		{"Score / min", fmt.Sprintf("%.2f", ScorePerMinute(st))},
		{"Transitions", fmt.Sprintf("%.2f", st.TransitionScore)},
		{"Key presses", fmt.Sprintf("%d", st.KeyPresses)},
		{"Mouse clicks", fmt.Sprintf("%d", st.MouseClicks)},
		{"Wheel turns", fmt.Sprintf("%d", st.WheelTurns)},
		{"Mouse moves", fmt.Sprintf("%d", st.MouseMoves)},
		{"Mouse distance", fmt.Sprintf("%.0f px", st.MouseDistance)},
		{"Mouse speed", fmt.Sprintf("%.0f px/s", MouseSpeed(st))},
		{"Moving mouse", formatMs(st.MovingMs)},
		{"In motion", formatMs(st.InMotionMs)},
		{"Motionless", formatMs(MotionlessMs(st))},
		{"Force-time", fmt.Sprintf("%.3f N*s", st.ForceTime)},
		{"Max force", fmt.Sprintf("%.2f N", s.MaxForce)},
		{"Hands L/R/both", fmt.Sprintf("%d / %d / %d", st.LeftPresses, st.RightPresses, st.BothPresses)},
		{"Hand disbalance", fmt.Sprintf("%.1f%%", HandDisbalance(st.LeftPresses, st.RightPresses))},
	}
	if st.LookupMisses > 0 {
		rows = append(rows, []string{"Unknown keys", fmt.Sprintf("%d", st.LookupMisses)})
	}
	title := "Session"
	if st.Name != "" {
		title = fmt.Sprintf("Session %q", st.Name)
	}
	if _, err := fmt.Fprintf(w, "%s (%s layout)\n", title, st.Layout); err != nil {
		return err
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalScore, totalRate float64
	lowestRate := math.Inf(1)
	for _, s := range sessions {
		rate := SessionRate(s)
		totalScore += s.Score
		totalRate += rate
		if rate < lowestRate {
			lowestRate = rate
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg score: %.2f", totalScore/count),
		fmt.Sprintf("Avg score/min: %.2f", totalRate/count),
		fmt.Sprintf("Lowest score/min: %.2f", lowestRate),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// SessionRate is a stored session's score per minute.
func SessionRate(s model.SessionAggregate) float64 {
	return ScorePerMinute(model.SessionStats{Score: s.Score, SpanMs: s.SpanMs})
}

// SessionCostPerKey is a stored session's score per key press.
func SessionCostPerKey(s model.SessionAggregate) float64 {
	return AverageCost(s.KeyPresses, s.Score)
}

// RenderCurves prints the score curves across sessions.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints score curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	rates := make([]float64, len(sessions))
	perKey := make([]float64, len(sessions))
	for i, s := range sessions {
		rates[i] = SessionRate(s)
		perKey[i] = SessionCostPerKey(s)
	}
	return PlotSeriesWithColor(w, "Complexity Curves", []Series{
		{Name: "Score/min", Values: MovingAverage(rates, window)},
		{Name: "Cost/key", Values: MovingAverage(perKey, window)},
	}, plotWidth(totalWidth), height, useColor)
}

// RenderHandCurves prints hand disbalance and the share of the score spent
// moving between keyboard and mouse, per session.
func RenderHandCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	disbalance := make([]float64, len(sessions))
	transitions := make([]float64, len(sessions))
	for i, s := range sessions {
		disbalance[i] = HandDisbalance(s.LeftPresses, s.RightPresses)
		transitions[i] = TransitionShare(s)
	}
	return PlotSeriesWithColor(w, "Hands and Transitions", []Series{
		{Name: "Disbalance %", Values: MovingAverage(disbalance, window)},
		{Name: "Transition %", Values: MovingAverage(transitions, window)},
	}, plotWidth(totalWidth), height, useColor)
}

// TransitionShare is the percentage of a session's score spent on
// keyboard and mouse transitions.
func TransitionShare(s model.SessionAggregate) float64 {
	if s.Score <= 0 {
		return 0
	}
	return s.TransitionScore / s.Score * 100
}

type keyRow struct {
	key     string
	avg     float64
	presses int
	sum     float64
	missed  int
}

func keyRows(aggs []model.KeyAggregate) []keyRow {
	rows := make([]keyRow, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, keyRow{
			key:     keyLabel(agg.Key),
			avg:     AverageCost(agg.Presses, agg.CostSum),
			presses: agg.Presses,
			sum:     agg.CostSum,
			missed:  agg.Missed,
		})
	}
	// Costliest first.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].avg == rows[j].avg {
			return rows[i].key < rows[j].key
		}
		return rows[i].avg > rows[j].avg
	})
	return rows
}

// RenderKeyTable prints per-key aggregates.
func RenderKeyTable(w io.Writer, aggs []model.KeyAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Key (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Key", "Avg Cost", "Presses", "Total", "Unknown"}
	tableRows := make([][]string, 0, len(aggs))
	for _, r := range keyRows(aggs) {
		tableRows = append(tableRows, []string{
			r.key,
			fmt.Sprintf("%.3f", r.avg),
			fmt.Sprintf("%d", r.presses),
			fmt.Sprintf("%.2f", r.sum),
			fmt.Sprintf("%d", r.missed),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderKeyCurves prints per-key cost curves.
func RenderKeyCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.KeyAggregate, keys []string, window int) error {
	return RenderKeyCurvesWithSize(w, sessions, perSession, keys, window, 0, 10, false)
}

// RenderKeyCurvesWithSize prints per-key cost curves sized to a given total width.
func RenderKeyCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.KeyAggregate, keys []string, window, totalWidth, height int, useColor bool) error {
	if len(keys) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Key Curves"); err != nil {
		return err
	}
	for _, key := range keys {
		avgSeries := make([]float64, len(sessions))
		countSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			if agg, ok := perSession[s.SessionID][key]; ok {
				avgSeries[i] = AverageCost(agg.Presses, agg.CostSum)
				countSeries[i] = float64(agg.Presses)
			}
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Key %s", keyLabel(key)), []Series{
			{Name: "Avg cost", Values: MovingAverage(avgSeries, window)},
			{Name: "Presses", Values: MovingAverage(countSeries, window)},
		}, plotWidth(totalWidth), height, useColor); err != nil {
			return err
		}
	}
	return nil
}

func plotWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}

func keyLabel(name string) string {
	return layout.Label(name)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}
