package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists every preset in increasing difficulty.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

// ParsePreset parses a preset name, case-insensitively.
func ParsePreset(s string) (DifficultyPreset, error) {
	p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Presets(), p) {
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", s)
	}
	return p, nil
}

// LayoutForPreset returns the grid a preset plays on.
func LayoutForPreset(preset DifficultyPreset) string {
	switch preset {
	case DifficultyEasy:
		return "3x4"
	case DifficultyHard:
		return "6x6"
	default:
		return "4x4"
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *MemoryConfig, preset DifficultyPreset) {
	layout := LayoutForPreset(preset)
	cfg.Board.Layout = layout
	if !slices.Contains(cfg.Board.Layouts, layout) {
		cfg.Board.Layouts = append(cfg.Board.Layouts, layout)
	}

	// Adjust budgets based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Moves.Multiplier = 2.5
		cfg.Scoring.MismatchPenalty = 5
	case DifficultyHard:
		cfg.Moves.Multiplier = 1.5
		cfg.Scoring.MismatchPenalty = 20
	}
}

// Validate rejects configurations the game cannot run with.
func (c MemoryConfig) Validate() error {
	if len(c.Board.Layouts) == 0 {
		return fmt.Errorf("config: board.layouts is empty")
	}
	for _, s := range c.Board.Layouts {
		if _, err := memory.ParseLayout(s); err != nil {
			return fmt.Errorf("config: board.layouts: %w", err)
		}
	}
	if c.Board.Layout != RandomLayout && !slices.Contains(c.Board.Layouts, c.Board.Layout) {
		return fmt.Errorf("config: board.layout %q is not in board.layouts", c.Board.Layout)
	}

	switch {
	case c.Scoring.BaseMatchScore < 0:
		return fmt.Errorf("config: scoring.base_match_score must not be negative")
	case c.Scoring.ComboMultiplier < 1:
		return fmt.Errorf("config: scoring.combo_multiplier must be at least 1")
	case c.Scoring.MismatchPenalty < 0:
		return fmt.Errorf("config: scoring.mismatch_penalty must not be negative")
	case c.Moves.Multiplier < 0 || c.Moves.Base < 0:
		return fmt.Errorf("config: moves must not be negative")
	case c.Moves.Multiplier == 0 && c.Moves.Base == 0:
		return fmt.Errorf("config: moves budget is always zero")
	}

	t := c.Timing
	if t.FlipDuration < 0 || t.MatchDelay < 0 || t.MismatchDelay < 0 || t.StaggerDelay < 0 || t.RestartDelay < 0 {
		return fmt.Errorf("config: timing values must not be negative")
	}
	return nil
}

// Rules converts the config into game rules.
func (c MemoryConfig) Rules() memory.Rules {
	return memory.Rules{
		Scoring: memory.ScoringRules{
			BaseMatchScore:  c.Scoring.BaseMatchScore,
			ComboMultiplier: c.Scoring.ComboMultiplier,
			MismatchPenalty: c.Scoring.MismatchPenalty,
		},
		Moves: memory.MoveRules{
			Multiplier: c.Moves.Multiplier,
			Base:       c.Moves.Base,
		},
		Timing: memory.Timing{
			FlipDuration:  c.Timing.FlipDuration,
			MatchDelay:    c.Timing.MatchDelay,
			MismatchDelay: c.Timing.MismatchDelay,
			StaggerDelay:  c.Timing.StaggerDelay,
			RestartDelay:  c.Timing.RestartDelay,
		},
	}
}

// Layouts returns the parsed layouts with the configured one first, and
// whether a random layout should be chosen per board.
func (c MemoryConfig) Layouts() ([]memory.Layout, bool, error) {
	layouts := make([]memory.Layout, 0, len(c.Board.Layouts))
	for _, s := range c.Board.Layouts {
		l, err := memory.ParseLayout(s)
		if err != nil {
			return nil, false, fmt.Errorf("config: %w", err)
		}
		if s == c.Board.Layout {
			layouts = append([]memory.Layout{l}, layouts...)
			continue
		}
		layouts = append(layouts, l)
	}
	if len(layouts) == 0 {
		return nil, false, fmt.Errorf("config: no layouts")
	}
	return layouts, c.Board.Layout == RandomLayout, nil
}
