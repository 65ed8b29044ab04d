package memory

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBoard(t *testing.T) {
	tests := []struct {
		rows, cols int
	}{
		{1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 6}, {6, 6},
	}
	for _, tt := range tests {
		l := Layout{Rows: tt.rows, Columns: tt.cols}
		t.Run(l.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			board, err := GenerateBoard(tt.rows, tt.cols, 32, rng)
			require.NoError(t, err)

			assert.Len(t, board.Cards, tt.rows*tt.cols)
			assert.Zero(t, board.TotalCards()%2, "card count must be even")
			assert.Equal(t, tt.rows*tt.cols/2, board.TotalPairs())

			pairs := map[int]int{}
			faces := map[int]int{}
			ids := map[int]bool{}
			for _, c := range board.Cards {
				pairs[c.PairID]++
				faces[c.Face]++
				ids[c.ID] = true
				assert.Equal(t, Hidden, c.State)
				assert.True(t, c.Interactive)
			}
			for pairID, n := range pairs {
				assert.Equal(t, 2, n, "pair %d", pairID)
			}
			for face, n := range faces {
				assert.Equal(t, 2, n, "face %d should belong to exactly one pair", face)
			}
			assert.Len(t, ids, len(board.Cards))
		})
	}
}

func TestGenerateBoardIsDeterministicForSeed(t *testing.T) {
	a, err := GenerateBoard(4, 4, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := GenerateBoard(4, 4, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, a.Views(), b.Views())
}

func TestGenerateBoardErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := GenerateBoard(3, 3, 32, rng)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = GenerateBoard(0, 4, 32, rng)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = GenerateBoard(4, 4, 7, rng)
	assert.ErrorIs(t, err, ErrNotEnoughFaces)
}

func TestNewBoardRejectsBadInput(t *testing.T) {
	_, err := NewBoard(2, 2, []*Card{{ID: 0}, {ID: 1}})
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = NewBoard(1, 2, []*Card{{ID: 0}, {ID: 0}})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestBoardLookups(t *testing.T) {
	board := pairedBoard(t, 2, 3)

	view := View{Rows: board.Rows, Columns: board.Columns, Cards: board.Views()}
	at, ok := view.At(1, 2)
	require.True(t, ok)
	assert.Equal(t, 5, at.ID)

	for _, pos := range [][2]int{{2, 0}, {0, 3}, {-1, 0}, {0, -1}} {
		_, ok = view.At(pos[0], pos[1])
		assert.False(t, ok, "position %v", pos)
	}
	_, ok = View{}.At(0, 0)
	assert.False(t, ok)

	c, ok := board.Card(3)
	require.True(t, ok)
	assert.Equal(t, 1, c.PairID)

	_, ok = board.Card(99)
	assert.False(t, ok)
}

func TestBoardMatchedPairs(t *testing.T) {
	board := pairedBoard(t, 2, 2)
	assert.Equal(t, 0, board.MatchedPairs())

	board.Cards[0].State = Matched
	board.Cards[1].State = Matched
	assert.Equal(t, 1, board.MatchedPairs())

	board.Cards[2].State = Revealed
	assert.Equal(t, 1, board.MatchedPairs())
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout(" 3X4 ")
	require.NoError(t, err)
	assert.Equal(t, Layout{Rows: 3, Columns: 4}, l)
	assert.Equal(t, 6, l.Pairs())

	for _, bad := range []string{"", "4", "ax4", "4xb", "3x3", "0x2"} {
		_, err := ParseLayout(bad)
		assert.ErrorIs(t, err, ErrInvalidGrid, bad)
	}
}
