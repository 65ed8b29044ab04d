package memory

import "math"

// ScoringRules configures how matches are rewarded and mismatches punished.
type ScoringRules struct {
	BaseMatchScore  int
	ComboMultiplier float64
	MismatchPenalty int
}

// ScoreState is the player's running score.
type ScoreState struct {
	Score    int
	Combo    int
	MaxCombo int
	Matches  int
}

// ScoreTracker applies ScoringRules to match/mismatch outcomes.
// It is not safe for concurrent use; the resolver serializes access.
type ScoreTracker struct {
	rules ScoringRules
	state ScoreState
	emit  Emitter
}

// NewScoreTracker creates a tracker that reports changes to emit.
func NewScoreTracker(rules ScoringRules, emit Emitter) *ScoreTracker {
	if emit == nil {
		emit = discardEmitter{}
	}
	return &ScoreTracker{rules: rules, emit: emit}
}

// State returns a copy of the current score state.
func (t *ScoreTracker) State() ScoreState {
	return t.state
}

// Points returns the award for a match made at the given combo streak.
func (t *ScoreTracker) Points(combo int) int {
	if combo < 1 {
		combo = 1
	}
	multiplier := 1 + float64(combo-1)*(t.rules.ComboMultiplier-1)
	return int(math.Round(float64(t.rules.BaseMatchScore) * multiplier))
}

// OnMatch extends the combo and awards points. Returns the points awarded.
func (t *ScoreTracker) OnMatch() int {
	t.state.Combo++
	if t.state.Combo > t.state.MaxCombo {
		t.state.MaxCombo = t.state.Combo
	}

	points := t.Points(t.state.Combo)
	t.state.Score += points
	t.state.Matches++

	t.emit.Emit(ComboUpdated{Combo: t.state.Combo, MaxCombo: t.state.MaxCombo})
	t.emit.Emit(ScoreUpdated{Score: t.state.Score, Delta: points})
	t.emit.Emit(MatchesUpdated{Matches: t.state.Matches})
	return points
}

// OnMismatch breaks the combo and subtracts the penalty, never going below zero.
func (t *ScoreTracker) OnMismatch() {
	before := t.state.Score
	t.state.Combo = 0
	t.state.Score = max(0, t.state.Score-t.rules.MismatchPenalty)

	t.emit.Emit(ComboUpdated{Combo: 0, MaxCombo: t.state.MaxCombo})
	t.emit.Emit(ScoreUpdated{Score: t.state.Score, Delta: t.state.Score - before})
}

// Reset zeroes every field.
func (t *ScoreTracker) Reset() {
	t.state = ScoreState{}
	t.emit.Emit(ComboUpdated{})
	t.emit.Emit(ScoreUpdated{})
	t.emit.Emit(MatchesUpdated{})
}

// ResetCombo zeroes the combo streak only; score and matches carry over.
func (t *ScoreTracker) ResetCombo() {
	t.state.Combo = 0
	t.emit.Emit(ComboUpdated{Combo: 0, MaxCombo: t.state.MaxCombo})
}

// Restore replaces the state wholesale, clamping negative values.
func (t *ScoreTracker) Restore(s ScoreState) {
	s.Score = max(0, s.Score)
	s.Combo = max(0, s.Combo)
	s.Matches = max(0, s.Matches)
	s.MaxCombo = max(s.MaxCombo, s.Combo)
	t.state = s

	t.emit.Emit(ComboUpdated{Combo: s.Combo, MaxCombo: s.MaxCombo})
	t.emit.Emit(ScoreUpdated{Score: s.Score})
	t.emit.Emit(MatchesUpdated{Matches: s.Matches})
}
