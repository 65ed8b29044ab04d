package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveRulesBudgetFor(t *testing.T) {
	tests := []struct {
		name  string
		rules MoveRules
		pairs int
		want  int
	}{
		{"default 2x2", MoveRules{Multiplier: 2, Base: 4}, 2, 8},
		{"default 4x4", MoveRules{Multiplier: 2, Base: 4}, 8, 20},
		{"fractional rounds up", MoveRules{Multiplier: 1.5, Base: 0}, 3, 5},
		{"base only", MoveRules{Multiplier: 0, Base: 1}, 6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rules.BudgetFor(tt.pairs))
		})
	}
}

func TestMoveBudgetDecrementFloorsAtZero(t *testing.T) {
	m := NewMoveBudget(MoveRules{Multiplier: 1, Base: 0})
	m.Initialize(2)
	assert.Equal(t, 2, m.Total())

	assert.Equal(t, 1, m.Decrement())
	assert.Equal(t, 0, m.Decrement())
	assert.Equal(t, 0, m.Decrement())
	assert.True(t, m.Exhausted())
	assert.Equal(t, 2, m.Total(), "total is fixed per board")
}

func TestMoveBudgetIsLost(t *testing.T) {
	m := NewMoveBudget(MoveRules{Multiplier: 0, Base: 1})
	m.Initialize(2)
	assert.False(t, m.IsLost(0, 2))

	m.Decrement()
	assert.True(t, m.IsLost(0, 2))
	assert.True(t, m.IsLost(1, 2))
	assert.False(t, m.IsLost(2, 2), "clearing the board on the last move is a win")
}

func TestMoveBudgetRestore(t *testing.T) {
	m := NewMoveBudget(MoveRules{Multiplier: 2, Base: 4})
	m.Initialize(2)

	m.Restore(3)
	assert.Equal(t, 3, m.Remaining())
	assert.Equal(t, 8, m.Total())

	m.Restore(12)
	assert.Equal(t, 12, m.Total(), "total grows to cover a larger saved budget")

	m.Restore(-1)
	assert.Equal(t, 0, m.Remaining())
}
