package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/memory.yaml
var defaultMemoryYAML []byte

// DefaultMemoryConfig returns the default memory game configuration.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Board: BoardConfig{
			Layouts: []string{"2x2", "2x3", "3x4", "4x4", "4x5", "5x6", "6x6"},
			Layout:  "4x4",
		},
		Scoring: ScoringConfig{
			BaseMatchScore:  100,
			ComboMultiplier: 1.5,
			MismatchPenalty: 10,
		},
		Moves: MovesConfig{
			Multiplier: 2.0,
			Base:       4,
		},
		Timing: TimingConfig{
			FlipDuration:  300 * time.Millisecond,
			MatchDelay:    500 * time.Millisecond,
			MismatchDelay: time.Second,
			StaggerDelay:  50 * time.Millisecond,
			RestartDelay:  1500 * time.Millisecond,
		},
		Faces: "emoji",
	}
}
