// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Scoring  ScoringConfig  `toml:"scoring"`
	Simulate SimulateConfig `toml:"simulate"`
	Stats    StatsConfig    `toml:"stats"`
}

// ScoringConfig maps device and lookup settings.
type ScoringConfig struct {
	Layout        *string  `toml:"layout"`
	PadWidth      *float64 `toml:"mouse-pad-width"`
	PadHeight     *float64 `toml:"mouse-pad-height"`
	MouseWidth    *float64 `toml:"mouse-width"`
	MouseHeight   *float64 `toml:"mouse-height"`
	MousePosition *string  `toml:"mouse-position"`
	StrictKeys    *bool    `toml:"strict-keys"`
}

// SimulateConfig maps synthetic session settings.
type SimulateConfig struct {
	Words        *int     `toml:"words"`
	WPM          *float64 `toml:"wpm"`
	CapsPct      *float64 `toml:"caps"`
	PunctPct     *float64 `toml:"punct"`
	PunctSet     *string  `toml:"punct-set"`
	Seed         *int64   `toml:"seed"`
	WordList     *string  `toml:"word-list"`
	FocusCostly  *bool    `toml:"focus-costly"`
	CostlyTop    *int     `toml:"costly-top"`
	CostlyFactor *float64 `toml:"costly-factor"`
	CostlyWindow *int     `toml:"costly-window"`
}

// StatsConfig maps history viewer settings.
type StatsConfig struct {
	CurveWindow *int `toml:"curve-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
