// Package memory implements the turn-resolution core of a tile-matching
// memory game: card selection, pair comparison, score and move budgets,
// game-over detection and save snapshots.
//
// Rendering, audio and storage are collaborators reached through the
// interfaces in ports.go; the package never assumes how they are built.
package memory

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidGrid is returned when a grid cannot hold whole pairs.
	ErrInvalidGrid = errors.New("memory: invalid grid")

	// ErrNotEnoughFaces is returned when the face set is smaller than the
	// number of pairs a grid needs.
	ErrNotEnoughFaces = errors.New("memory: not enough distinct faces")
)

// CardState is the visual/logical state of a single card.
type CardState int

const (
	Hidden CardState = iota
	Revealing
	Revealed
	Matched
	Mismatched
)

// String returns the lower-case name of the state.
func (s CardState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealing:
		return "revealing"
	case Revealed:
		return "revealed"
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	default:
		return "unknown"
	}
}

// Card is one tile on the board.
type Card struct {
	ID          int
	PairID      int
	Face        int // index into the face set, opaque to the core
	State       CardState
	Interactive bool
}

// IsPairWith reports whether c and other form a matching pair.
func (c Card) IsPairWith(other Card) bool {
	return c.PairID == other.PairID && c.ID != other.ID
}

// Board is a rows x columns grid of cards in display order.
type Board struct {
	Rows    int
	Columns int
	Cards   []*Card

	byID map[int]*Card
}

// NewBoard wraps cards into a board and checks the grid invariants.
func NewBoard(rows, columns int, cards []*Card) (*Board, error) {
	if err := ValidateGrid(rows, columns); err != nil {
		return nil, err
	}
	if len(cards) != rows*columns {
		return nil, fmt.Errorf("%w: %d cards for a %dx%d grid", ErrInvalidGrid, len(cards), rows, columns)
	}

	b := &Board{
		Rows:    rows,
		Columns: columns,
		Cards:   cards,
		byID:    make(map[int]*Card, len(cards)),
	}
	for _, c := range cards {
		if _, dup := b.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate card id %d", ErrInvalidGrid, c.ID)
		}
		b.byID[c.ID] = c
	}
	return b, nil
}

// ValidateGrid checks that a rows x columns grid can be filled with pairs.
func ValidateGrid(rows, columns int) error {
	if rows < 1 || columns < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, columns)
	}
	if (rows*columns)%2 != 0 {
		return fmt.Errorf("%w: %dx%d has an odd number of cells", ErrInvalidGrid, rows, columns)
	}
	return nil
}

// GenerateBoard deals a shuffled board of rows x columns cards.
// Every pair gets a distinct face drawn from [0, faceCount).
func GenerateBoard(rows, columns, faceCount int, rng *rand.Rand) (*Board, error) {
	if err := ValidateGrid(rows, columns); err != nil {
		return nil, err
	}

	pairs := rows * columns / 2
	if faceCount < pairs {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughFaces, pairs, faceCount)
	}

	faces := rng.Perm(faceCount)[:pairs]
	cards := make([]*Card, 0, pairs*2)
	for pairID := 0; pairID < pairs; pairID++ {
		for range 2 {
			cards = append(cards, &Card{
				ID:          len(cards),
				PairID:      pairID,
				Face:        faces[pairID],
				State:       Hidden,
				Interactive: true,
			})
		}
	}

	// Fisher-Yates, same as dealing from a shuffled deck
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}

	return NewBoard(rows, columns, cards)
}

// Card returns the card with the given id.
func (b *Board) Card(id int) (*Card, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.byID[id]
	return c, ok
}

// TotalCards returns rows x columns.
func (b *Board) TotalCards() int {
	return b.Rows * b.Columns
}

// TotalPairs returns the number of pairs on the board.
func (b *Board) TotalPairs() int {
	return b.TotalCards() / 2
}

// MatchedPairs counts pairs already resolved as matches.
func (b *Board) MatchedPairs() int {
	matched := 0
	for _, c := range b.Cards {
		if c.State == Matched {
			matched++
		}
	}
	return matched / 2
}

// Views returns a copy of every card in display order.
func (b *Board) Views() []Card {
	if b == nil {
		return nil
	}
	views := make([]Card, len(b.Cards))
	for i, c := range b.Cards {
		views[i] = *c
	}
	return views
}
