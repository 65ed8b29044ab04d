package memory

import "math"

// MoveRules sets the move budget: total = ceil(pairs * Multiplier) + Base.
type MoveRules struct {
	Multiplier float64
	Base       int
}

// MoveBudget counts the pairs a player may still reveal on this board.
type MoveBudget struct {
	rules     MoveRules
	total     int
	remaining int
}

// NewMoveBudget returns an empty budget; call Initialize once a board exists.
func NewMoveBudget(rules MoveRules) *MoveBudget {
	return &MoveBudget{rules: rules}
}

// BudgetFor computes the total moves allotted to a board with pairCount pairs.
func (r MoveRules) BudgetFor(pairCount int) int {
	return int(math.Ceil(float64(pairCount)*r.Multiplier)) + r.Base
}

// Initialize sizes the budget for a new board.
func (m *MoveBudget) Initialize(pairCount int) {
	m.total = max(0, m.rules.BudgetFor(pairCount))
	m.remaining = m.total
}

// Restore sets the remaining moves from a save, keeping total as computed.
func (m *MoveBudget) Restore(remaining int) {
	m.remaining = max(0, remaining)
	if m.remaining > m.total {
		m.total = m.remaining
	}
}

// Decrement spends one move and returns what is left.
func (m *MoveBudget) Decrement() int {
	m.remaining = max(0, m.remaining-1)
	return m.remaining
}

// Total returns the moves allotted to the current board.
func (m *MoveBudget) Total() int {
	return m.total
}

// Remaining returns the moves still available.
func (m *MoveBudget) Remaining() int {
	return m.remaining
}

// Exhausted reports whether no moves remain.
func (m *MoveBudget) Exhausted() bool {
	return m.remaining == 0
}

// IsLost reports the loss condition: out of moves with pairs still hidden.
func (m *MoveBudget) IsLost(matches, totalPairs int) bool {
	return m.Exhausted() && matches < totalPairs
}
