// Package model defines shared data structures.
package model

import "time"

// ScoringConfig defines how events are priced.
type ScoringConfig struct {
	LayoutPath    string
	PadWidth      float64
	PadHeight     float64
	MouseWidth    float64
	MouseHeight   float64
	MousePosition string
	StrictKeys    bool
}

// SimulateConfig defines synthetic session settings.
type SimulateConfig struct {
	Words        int
	WPM          float64
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	Seed         int64
	FocusCostly  bool
	CostlyTop    int
	CostlyFactor float64
	CostlyWindow int
	WordListPath string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Layout      string
	Since       *time.Time
	Last        int
	CurveWindow int
	Keys        string
}

// SessionStats captures a scored session.
type SessionStats struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Name          string
	Source        string
	Layout        string
	MousePosition string
	Events        int
	KeyPresses    int
	MouseClicks   int
	WheelTurns    int
	MouseMoves    int
	// MouseDistance is the summed pointer path, in pixels.
	MouseDistance float64
	MovingMs      int64
	InMotionMs    int64
	SpanMs        int64
	// ForceTime is in newton-seconds.
	ForceTime       float64
	Score           float64
	TransitionScore float64
	LeftPresses     int
	RightPresses    int
	BothPresses     int
	LookupMisses    int
}

// KeyStats stores per-key stats for a session.
type KeyStats struct {
	Key     string
	Presses int
	CostSum float64
	Missed  int
}

// KeyAggregate aggregates key stats across sessions.
type KeyAggregate struct {
	Key     string
	Presses int
	CostSum float64
	Missed  int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID       int64
	EndedAt         time.Time
	Name            string
	Events          int
	KeyPresses      int
	Score           float64
	TransitionScore float64
	SpanMs          int64
	ForceTime       float64
	LeftPresses     int
	RightPresses    int
	LookupMisses    int
}
