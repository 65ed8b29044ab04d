// Package config provides YAML-based game configuration loading and
// difficulty presets for the memory game.
package config

import "time"

// MemoryConfig contains all configuration for the memory game.
type MemoryConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Scoring ScoringConfig `yaml:"scoring"`
	Moves   MovesConfig   `yaml:"moves"`
	Timing  TimingConfig  `yaml:"timing"`
	Faces   string        `yaml:"faces"` // name of the face set
}

// BoardConfig lists the grid layouts a game may be dealt in.
type BoardConfig struct {
	Layouts []string `yaml:"layouts"` // "RxC", e.g. "4x4"
	Layout  string   `yaml:"layout"`  // one of Layouts, or "random"
}

// ScoringConfig defines match rewards and mismatch penalties.
type ScoringConfig struct {
	BaseMatchScore  int     `yaml:"base_match_score"`
	ComboMultiplier float64 `yaml:"combo_multiplier"` // applied per extra step of a combo
	MismatchPenalty int     `yaml:"mismatch_penalty"`
}

// MovesConfig sizes the move budget: ceil(pairs * multiplier) + base.
type MovesConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	Base       int     `yaml:"base"`
}

// TimingConfig holds animation and settle delays.
type TimingConfig struct {
	FlipDuration  time.Duration `yaml:"flip_duration"`
	MatchDelay    time.Duration `yaml:"match_delay"`
	MismatchDelay time.Duration `yaml:"mismatch_delay"`
	StaggerDelay  time.Duration `yaml:"stagger_delay"`
	RestartDelay  time.Duration `yaml:"restart_delay"`
}

// RandomLayout selects a layout at random for every new board.
const RandomLayout = "random"
