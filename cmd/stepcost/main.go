// Package main provides the CLI entrypoint for stepcost.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/stepcost/internal/config"
	"github.com/verte-zerg/stepcost/internal/device"
	"github.com/verte-zerg/stepcost/internal/geom"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/layoutfile"
	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/store"
)

const (
	defaultPadWidth      = 18.0
	defaultPadHeight     = 18.0
	defaultMouseWidth    = 5.6
	defaultMouseHeight   = 10.2
	defaultMousePosition = "right"
	defaultCurveWindow   = 20
)

var (
	verbose bool
	fileCfg config.FileConfig

	scoring = model.ScoringConfig{
		LayoutPath:    layout.NaturalName,
		PadWidth:      defaultPadWidth,
		PadHeight:     defaultPadHeight,
		MouseWidth:    defaultMouseWidth,
		MouseHeight:   defaultMouseHeight,
		MousePosition: defaultMousePosition,
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stepcost",
		Short:         "Ergonomic cost of keyboard and mouse sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			loaded, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fileCfg = loaded
			applyScoringConfig(cmd, fileCfg.Scoring)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	flags.StringVar(&scoring.LayoutPath, "layout", scoring.LayoutPath, "layout name or file (yaml, toml, json)")
	flags.Float64Var(&scoring.PadWidth, "mouse-pad-width", scoring.PadWidth, "mouse pad width in cm")
	flags.Float64Var(&scoring.PadHeight, "mouse-pad-height", scoring.PadHeight, "mouse pad height in cm")
	flags.Float64Var(&scoring.MouseWidth, "mouse-width", scoring.MouseWidth, "mouse width in cm")
	flags.Float64Var(&scoring.MouseHeight, "mouse-height", scoring.MouseHeight, "mouse height in cm")
	flags.StringVar(&scoring.MousePosition, "mouse-position", scoring.MousePosition, "mouse pad side: left, right or both")
	flags.BoolVar(&scoring.StrictKeys, "strict-keys", false, "fail on keys missing from the layout")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newFollowCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func applyScoringConfig(cmd *cobra.Command, fc config.ScoringConfig) {
	applyStringConfig(cmd, "layout", &scoring.LayoutPath, fc.Layout)
	applyFloatConfig(cmd, "mouse-pad-width", &scoring.PadWidth, fc.PadWidth)
	applyFloatConfig(cmd, "mouse-pad-height", &scoring.PadHeight, fc.PadHeight)
	applyFloatConfig(cmd, "mouse-width", &scoring.MouseWidth, fc.MouseWidth)
	applyFloatConfig(cmd, "mouse-height", &scoring.MouseHeight, fc.MouseHeight)
	applyStringConfig(cmd, "mouse-position", &scoring.MousePosition, fc.MousePosition)
	applyBoolConfig(cmd, "strict-keys", &scoring.StrictKeys, fc.StrictKeys)
}

func validateScoring(cfg model.ScoringConfig) error {
	if cfg.PadWidth <= 0 || cfg.PadHeight <= 0 {
		return fmt.Errorf("--mouse-pad-width and --mouse-pad-height must be > 0")
	}
	if cfg.MouseWidth <= 0 || cfg.MouseHeight <= 0 {
		return fmt.Errorf("--mouse-width and --mouse-height must be > 0")
	}
	if cfg.MouseWidth > cfg.PadWidth || cfg.MouseHeight > cfg.PadHeight {
		return fmt.Errorf("mouse does not fit on the mouse pad")
	}
	if _, err := layout.ParseHandedness(cfg.MousePosition); err != nil {
		return fmt.Errorf("invalid --mouse-position: %w", err)
	}
	return nil
}

// newKeyboard loads the configured layout and attaches the mouse pad.
func newKeyboard(cfg model.ScoringConfig) (*device.Keyboard, error) {
	if err := validateScoring(cfg); err != nil {
		return nil, err
	}
	l, err := layoutfile.Open(cfg.LayoutPath, config.DefaultLayoutDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	position, err := layout.ParseHandedness(cfg.MousePosition)
	if err != nil {
		return nil, err
	}
	pad := &layout.MousePad{
		Size:  geom.Size{Width: cfg.PadWidth, Height: cfg.PadHeight},
		Mouse: &layout.Mouse{Size: geom.Size{Width: cfg.MouseWidth, Height: cfg.MouseHeight}},
	}
	kb := device.NewKeyboard(l, device.Options{Logger: logger, StrictKeys: cfg.StrictKeys})
	kb.AttachPointingDevice(pad, position)
	logger.Debug("keyboard ready", "layout", l.Name(), "mouse_position", position, "strict", cfg.StrictKeys)
	return kb, nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# stepcost configuration
# Uncomment a value to enable it. CLI flags override config values.

[scoring]
# layout = %q           # Built-in name, a name under %s, or a file path
# mouse-pad-width = %.1f      # Mouse pad width in cm
# mouse-pad-height = %.1f     # Mouse pad height in cm
# mouse-width = %.1f           # Mouse width in cm
# mouse-height = %.1f         # Mouse height in cm
# mouse-position = %q     # left, right or both
# strict-keys = false         # Fail on keys missing from the layout

[simulate]
# words = %d                  # Words per synthetic session
# wpm = %.0f                    # Typing speed
# caps = %.2f                 # Probability of capitalized first letter (0-1)
# punct = %.2f                # Punctuation probability per word (0-1)
# punct-set = %q
# seed = 0                    # 0 picks a new seed each run
# word-list = ""              # One word per line; built-in list when empty
# focus-costly = false        # Bias words toward historically costly keys
# costly-top = %d              # Number of costly keys to focus on
# costly-factor = %.1f         # Weight factor per costly key in a word
# costly-window = %d          # Number of recent sessions to find costly keys

[stats]
# curve-window = %d           # Moving average window
`,
		layout.NaturalName,
		config.DefaultLayoutDir(),
		defaultPadWidth,
		defaultPadHeight,
		defaultMouseWidth,
		defaultMouseHeight,
		defaultMousePosition,
		defaultWords,
		defaultWPM,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultCostlyTop,
		defaultCostlyFactor,
		defaultCostlyWindow,
		defaultCurveWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
