package memory

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned by Restore when a snapshot cannot be
// rebuilt into a playable board.
var ErrInvalidSnapshot = errors.New("memory: invalid snapshot")

// Snapshot is the persisted form of an in-progress game. Transient card
// states are never stored; a card is either matched or not.
type Snapshot struct {
	Score     int            `json:"score"`
	Combo     int            `json:"combo"`
	MaxCombo  int            `json:"maxCombo,omitempty"`
	Matches   int            `json:"matches"`
	MovesLeft int            `json:"movesLeft"`
	Rows      int            `json:"rows"`
	Columns   int            `json:"columns"`
	Cards     []CardSnapshot `json:"cards"`
	Timestamp int64          `json:"timestamp"`
}

// CardSnapshot is one persisted card.
type CardSnapshot struct {
	ID      int  `json:"id"`
	PairID  int  `json:"pairId"`
	FaceRef int  `json:"faceRef"`
	Matched bool `json:"matched"`
}

// Restored is a snapshot rebuilt into live state.
type Restored struct {
	Board     *Board
	Score     ScoreState
	MovesLeft int
}

// Capture converts live state into a snapshot. The timestamp is left for
// the writer to stamp.
func Capture(board *Board, score ScoreState, moves *MoveBudget) Snapshot {
	snap := Snapshot{
		Score:     score.Score,
		Combo:     score.Combo,
		MaxCombo:  score.MaxCombo,
		Matches:   score.Matches,
		MovesLeft: moves.Remaining(),
		Rows:      board.Rows,
		Columns:   board.Columns,
		Cards:     make([]CardSnapshot, len(board.Cards)),
	}
	for i, c := range board.Cards {
		snap.Cards[i] = CardSnapshot{
			ID:      c.ID,
			PairID:  c.PairID,
			FaceRef: c.Face,
			Matched: c.State == Matched,
		}
	}
	return snap
}

// Validate checks that s describes a board that can be rebuilt.
func (s Snapshot) Validate() error {
	switch {
	case len(s.Cards) == 0:
		return fmt.Errorf("%w: no cards", ErrInvalidSnapshot)
	case s.Rows <= 0 || s.Columns <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidSnapshot, s.Rows, s.Columns)
	case len(s.Cards) != s.Rows*s.Columns:
		return fmt.Errorf("%w: %d cards for a %dx%d grid", ErrInvalidSnapshot, len(s.Cards), s.Rows, s.Columns)
	case s.Score < 0 || s.Combo < 0 || s.Matches < 0 || s.MovesLeft < 0:
		return fmt.Errorf("%w: negative counter", ErrInvalidSnapshot)
	}

	type group struct {
		count   int
		matched int
	}
	groups := make(map[int]*group, len(s.Cards)/2)
	for _, c := range s.Cards {
		g, ok := groups[c.PairID]
		if !ok {
			g = &group{}
			groups[c.PairID] = g
		}
		g.count++
		if c.Matched {
			g.matched++
		}
	}
	for id, g := range groups {
		if g.count != 2 {
			return fmt.Errorf("%w: pair %d has %d cards", ErrInvalidSnapshot, id, g.count)
		}
		if g.matched == 1 {
			return fmt.Errorf("%w: pair %d is half matched", ErrInvalidSnapshot, id)
		}
	}
	return nil
}

// Restore rebuilds a board and counters from s. Matched cards come back
// Matched and non-interactive, every other card Hidden.
func Restore(s Snapshot) (Restored, error) {
	if err := s.Validate(); err != nil {
		return Restored{}, err
	}

	cards := make([]*Card, len(s.Cards))
	for i, cs := range s.Cards {
		c := &Card{
			ID:          cs.ID,
			PairID:      cs.PairID,
			Face:        cs.FaceRef,
			State:       Hidden,
			Interactive: true,
		}
		if cs.Matched {
			c.State = Matched
			c.Interactive = false
		}
		cards[i] = c
	}

	board, err := NewBoard(s.Rows, s.Columns, cards)
	if err != nil {
		return Restored{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	return Restored{
		Board: board,
		Score: ScoreState{
			Score:    s.Score,
			Combo:    s.Combo,
			MaxCombo: max(s.MaxCombo, s.Combo),
			Matches:  s.Matches,
		},
		MovesLeft: s.MovesLeft,
	}, nil
}

// Finished reports whether the restored game is already won or lost.
func (rs Restored) Finished() bool {
	matched, total := rs.Board.MatchedPairs(), rs.Board.TotalPairs()
	return matched == total || rs.MovesLeft == 0
}

// Won reports whether every pair on the restored board is matched.
func (rs Restored) Won() bool {
	return rs.Board.MatchedPairs() == rs.Board.TotalPairs()
}
