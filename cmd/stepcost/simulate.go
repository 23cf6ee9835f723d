package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/stepcost/internal/config"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/recording"
	"github.com/verte-zerg/stepcost/internal/stats"
	"github.com/verte-zerg/stepcost/internal/synth"
	"github.com/verte-zerg/stepcost/internal/wordlist"
)

const (
	defaultWords        = 50
	defaultWPM          = 40.0
	defaultCaps         = 0.1
	defaultPunct        = 0.1
	defaultCostlyTop    = 8
	defaultCostlyFactor = 2.0
	defaultCostlyWindow = 20
	// Keys pressed fewer times than this are not trusted as costly.
	costlyMinPresses = 3
)

const defaultPunctSet = ".,;:!?'\"-"

var (
	simulate = model.SimulateConfig{
		Words:        defaultWords,
		WPM:          defaultWPM,
		CapsPct:      defaultCaps,
		PunctPct:     defaultPunct,
		PunctSet:     defaultPunctSet,
		CostlyTop:    defaultCostlyTop,
		CostlyFactor: defaultCostlyFactor,
		CostlyWindow: defaultCostlyWindow,
	}
	simulateText string
	simulateOut  string
	simulateSave bool
	simulateName string
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Score a synthetic typing session",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	flags := cmd.Flags()
	flags.StringVar(&simulateText, "text", "", "type this text instead of random words")
	flags.IntVar(&simulate.Words, "words", simulate.Words, "random words to type")
	flags.Float64Var(&simulate.WPM, "wpm", simulate.WPM, "typing speed in words per minute")
	flags.Float64Var(&simulate.CapsPct, "caps", simulate.CapsPct, "probability of capitalized first letter (0-1)")
	flags.Float64Var(&simulate.PunctPct, "punct", simulate.PunctPct, "punctuation probability per word (0-1)")
	flags.StringVar(&simulate.PunctSet, "punct-set", simulate.PunctSet, "punctuation set")
	flags.Int64Var(&simulate.Seed, "seed", 0, "random seed (0 for a new one each run)")
	flags.StringVar(&simulate.WordListPath, "word-list", "", "word list file, one word per line")
	flags.BoolVar(&simulate.FocusCostly, "focus-costly", false, "bias words toward historically costly keys")
	flags.IntVar(&simulate.CostlyTop, "costly-top", simulate.CostlyTop, "number of costly keys to focus on")
	flags.Float64Var(&simulate.CostlyFactor, "costly-factor", simulate.CostlyFactor, "weight factor per costly key in a word")
	flags.IntVar(&simulate.CostlyWindow, "costly-window", simulate.CostlyWindow, "number of recent sessions to find costly keys")
	flags.StringVar(&simulateOut, "out", "", "write the synthetic recording to this file")
	flags.BoolVar(&simulateSave, "save", false, "store the session in the history")
	flags.StringVar(&simulateName, "name", "simulated", "session name")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	applySimulateConfig(cmd, fileCfg.Simulate)
	if err := validateSimulate(simulate); err != nil {
		return err
	}

	text := simulateText
	if text == "" {
		var err error
		text, err = randomText(simulate)
		if err != nil {
			return err
		}
	}
	logger.Debug("synthetic text", "text", text)

	kb, err := newKeyboard(scoring)
	if err != nil {
		return err
	}
	typist := synth.Typist{Layout: kb.Layout(), WPM: simulate.WPM}
	events, err := typist.Type(text, time.Now())
	if err != nil {
		return err
	}
	if simulateOut != "" {
		if err := recording.WriteFile(simulateOut, events); err != nil {
			return err
		}
		logErrf("Wrote %s\n", simulateOut)
	}

	session, err := scoreEvents(events, simulateName, "simulate")
	if err != nil {
		return err
	}
	if err := stats.RenderSession(cmd.OutOrStdout(), session); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if simulateSave {
		return saveSession(session)
	}
	return nil
}

func applySimulateConfig(cmd *cobra.Command, fc config.SimulateConfig) {
	applyIntConfig(cmd, "words", &simulate.Words, fc.Words)
	applyFloatConfig(cmd, "wpm", &simulate.WPM, fc.WPM)
	applyFloatConfig(cmd, "caps", &simulate.CapsPct, fc.CapsPct)
	applyFloatConfig(cmd, "punct", &simulate.PunctPct, fc.PunctPct)
	applyStringConfig(cmd, "punct-set", &simulate.PunctSet, fc.PunctSet)
	applyInt64Config(cmd, "seed", &simulate.Seed, fc.Seed)
	applyStringConfig(cmd, "word-list", &simulate.WordListPath, fc.WordList)
	applyBoolConfig(cmd, "focus-costly", &simulate.FocusCostly, fc.FocusCostly)
	applyIntConfig(cmd, "costly-top", &simulate.CostlyTop, fc.CostlyTop)
	applyFloatConfig(cmd, "costly-factor", &simulate.CostlyFactor, fc.CostlyFactor)
	applyIntConfig(cmd, "costly-window", &simulate.CostlyWindow, fc.CostlyWindow)
}

func validateSimulate(cfg model.SimulateConfig) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.WPM <= 0 {
		return fmt.Errorf("--wpm must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	for _, r := range cfg.PunctSet {
		if _, ok := synth.KeyFor(r); !ok {
			return fmt.Errorf("--punct-set: %q cannot be typed", r)
		}
	}
	if cfg.CostlyTop < 0 {
		return fmt.Errorf("--costly-top must be >= 0")
	}
	if cfg.CostlyFactor < 0 {
		return fmt.Errorf("--costly-factor must be >= 0")
	}
	if cfg.CostlyWindow < 0 {
		return fmt.Errorf("--costly-window must be >= 0")
	}
	return nil
}

func loadWords(path string) ([]string, error) {
	words := wordlist.Default()
	if path != "" {
		var err error
		words, err = wordlist.LoadWords(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
	}
	return wordlist.Filter(words, synth.Typeable)
}

func randomText(cfg model.SimulateConfig) (string, error) {
	words, err := loadWords(cfg.WordListPath)
	if err != nil {
		return "", err
	}
	gen := synth.New(cfg.Seed)
	punct := []rune(cfg.PunctSet)
	if !cfg.FocusCostly {
		return strings.Join(gen.Generate(words, cfg.Words, cfg.CapsPct, cfg.PunctPct, punct), " "), nil
	}
	costly, err := loadCostlyKeys(cfg)
	if err != nil {
		logErrf("failed to load costly keys: %v\n", err)
	}
	if len(costly) == 0 {
		logErrln("no stats available for costly-key focus yet; using normal generator")
	}
	return strings.Join(gen.GenerateWeighted(words, cfg.Words, cfg.CapsPct, cfg.PunctPct, punct, costly, cfg.CostlyFactor), " "), nil
}

func loadCostlyKeys(cfg model.SimulateConfig) (map[string]struct{}, error) {
	st, closeStore, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()
	l, err := loadLayout(scoring.LayoutPath)
	if err != nil {
		return nil, err
	}
	aggs, err := st.GetCostliestKeys(context.Background(), cfg.CostlyWindow, l.Name())
	if err != nil {
		return nil, err
	}
	costly := stats.SelectCostlyKeys(aggs, cfg.CostlyTop, costlyMinPresses)
	logger.Debug("costly keys", "count", len(costly))
	return costly, nil
}
