package memory

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverMatchThenWin(t *testing.T) {
	// 2x2: cards 0/1 are pair A, 2/3 are pair B
	r, rec := newTestResolver(t, pairedBoard(t, 2, 2), instantRules(), nil)
	total := r.View().MovesTotal

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()

	v := r.View()
	assert.Equal(t, Matched, v.Cards[0].State)
	assert.Equal(t, Matched, v.Cards[1].State)
	assert.False(t, v.Cards[0].Interactive)
	assert.Equal(t, 100, v.Score.Score, "first match scores base x1")
	assert.Equal(t, 1, v.Score.Matches)
	assert.Equal(t, total-1, v.MovesLeft)
	assert.Equal(t, 0, countOf[GameWon](rec), "one pair left, no win yet")
	assert.Equal(t, 1, countOf[PairProcessed](rec))
	assert.Equal(t, PhaseIdle, r.phase.Current())

	require.True(t, r.AttemptSelect(2))
	require.True(t, r.AttemptSelect(3))
	r.Wait()

	v = r.View()
	assert.Equal(t, 250, v.Score.Score)
	assert.Equal(t, 2, v.Score.Combo)
	assert.Equal(t, total-2, v.MovesLeft)
	assert.Equal(t, 1, countOf[GameWon](rec))
	assert.Equal(t, 0, countOf[GameLost](rec))
	assert.True(t, v.Ended)
	assert.False(t, r.Processing(2))
	assert.False(t, r.Processing(3))

	// the latch keeps the board closed until a reset
	assert.False(t, r.AttemptSelect(0))
	assert.Equal(t, 1, countOf[GameWon](rec))
}

func TestResolverSinglePairWinsImmediately(t *testing.T) {
	r, rec := newTestResolver(t, pairedBoard(t, 1, 2), instantRules(), nil)

	require.True(t, r.AttemptSelect(1))
	require.True(t, r.AttemptSelect(0))
	r.Wait()

	v := r.View()
	assert.Equal(t, 1, v.Score.Matches)
	assert.Equal(t, v.MovesTotal-1, v.MovesLeft)
	assert.Equal(t, 1, countOf[GameWon](rec))
	assert.Equal(t, 0, countOf[PairProcessed](rec), "a winning pair skips the settle path")
	assert.Empty(t, v.Busy)
}

func TestResolverMismatch(t *testing.T) {
	r, rec := newTestResolver(t, pairedBoard(t, 2, 4), instantRules(), nil)

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()
	require.True(t, r.AttemptSelect(2))
	require.True(t, r.AttemptSelect(4))
	r.Wait()

	v := r.View()
	assert.Equal(t, Hidden, v.Cards[2].State)
	assert.Equal(t, Hidden, v.Cards[4].State)
	assert.True(t, v.Cards[2].Interactive)
	assert.Equal(t, 90, v.Score.Score, "penalty of 10 after a 100 point match")
	assert.Equal(t, 0, v.Score.Combo)
	assert.Equal(t, 1, v.Score.MaxCombo)
	assert.Equal(t, v.MovesTotal-2, v.MovesLeft)
	assert.Equal(t, 2, countOf[PairProcessed](rec))
	assert.Equal(t, 2, countOf[MovesUpdated](rec)-1, "one update per pair after the initial sizing")

	// a mismatched card can be picked again next turn
	assert.True(t, r.AttemptSelect(2))
}

func TestResolverMismatchFloorsScoreAtZero(t *testing.T) {
	r, _ := newTestResolver(t, pairedBoard(t, 2, 2), instantRules(), nil)

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(2))
	r.Wait()

	assert.Equal(t, 0, r.View().Score.Score)
}

func TestResolverLostOnLastMove(t *testing.T) {
	rules := instantRules()
	rules.Moves = MoveRules{Multiplier: 0, Base: 1}
	r, rec := newTestResolver(t, pairedBoard(t, 2, 2), rules, nil)
	require.Equal(t, 1, r.View().MovesTotal)

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(2))
	r.Wait()

	v := r.View()
	assert.Equal(t, 0, v.MovesLeft)
	assert.Equal(t, Hidden, v.Cards[0].State, "mismatch settles before the loss is signalled")
	assert.Equal(t, 1, countOf[GameLost](rec))
	assert.Equal(t, 0, countOf[GameWon](rec))
	assert.Equal(t, 0, countOf[PairProcessed](rec))
	assert.False(t, r.Processing(0), "processing is released before the game ends")
	assert.False(t, r.Processing(2))
	assert.Equal(t, PhaseCardRevealing, r.phase.Current(), "a lost game does not return to idle")
	assert.False(t, r.AttemptSelect(1))
}

func TestResolverLostAfterMatch(t *testing.T) {
	rules := instantRules()
	rules.Moves = MoveRules{Multiplier: 0, Base: 1}
	r, rec := newTestResolver(t, pairedBoard(t, 2, 4), rules, nil)

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()

	v := r.View()
	assert.Equal(t, Matched, v.Cards[0].State)
	assert.False(t, v.Cards[1].Interactive)
	assert.Equal(t, 1, countOf[GameLost](rec))
}

func TestResolverRejectsWithoutSideEffects(t *testing.T) {
	r, rec := newTestResolver(t, pairedBoard(t, 2, 4), instantRules(), nil)
	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()

	before := r.View()
	events := len(rec.all())

	assert.False(t, r.AttemptSelect(0), "matched card")
	assert.False(t, r.AttemptSelect(1), "matched card")
	assert.False(t, r.AttemptSelect(-1), "unknown card")
	assert.False(t, r.AttemptSelect(8), "unknown card")

	assert.Equal(t, before, r.View())
	assert.Len(t, rec.all(), events)
}

func TestResolverRejectsOutsidePlayablePhases(t *testing.T) {
	r, _ := newTestResolver(t, pairedBoard(t, 2, 2), instantRules(), nil)

	r.phase.Change(PhaseInitializing)
	assert.False(t, r.AttemptSelect(0))

	r.phase.Change(PhaseFinished)
	assert.False(t, r.AttemptSelect(0))

	r.phase.Change(PhaseIdle)
	assert.True(t, r.AttemptSelect(0))
}

func TestResolverSelectionGates(t *testing.T) {
	gate := newGateAnimator()
	r, _ := newTestResolver(t, pairedBoard(t, 2, 2), instantRules(), gate)

	require.True(t, r.AttemptSelect(0))
	assert.Equal(t, Revealing, r.View().Cards[0].State)
	assert.Equal(t, PhaseCardRevealing, r.phase.Current())
	assert.False(t, r.AttemptSelect(0), "card mid reveal")
	assert.Equal(t, 1, r.View().Selected)

	require.True(t, r.AttemptSelect(2))
	assert.Equal(t, 0, r.View().Selected, "a full selection is handed off")
	assert.False(t, r.AttemptSelect(1), "next turn waits for the pair to resolve")
	assert.True(t, r.Processing(0))
	assert.True(t, r.Processing(2))

	close(gate.open)
	r.Wait()

	assert.False(t, r.Processing(0))
	assert.False(t, r.Processing(2))
	assert.Equal(t, PhaseIdle, r.phase.Current())
	assert.True(t, r.AttemptSelect(1))
}

func TestResolverConcurrentSelectAdmitsAtMostTwo(t *testing.T) {
	gate := newGateAnimator()
	r, _ := newTestResolver(t, pairedBoard(t, 4, 4), instantRules(), gate)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range 16 {
				if r.AttemptSelect(id) {
					accepted.Add(1)
				}
				assert.LessOrEqual(t, r.View().Selected, 2)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), accepted.Load())
	assert.Len(t, r.View().Busy, 2)
	close(gate.open)
}

func TestResolverStopAllCancelsPendingPair(t *testing.T) {
	gate := newGateAnimator()
	r, rec := newTestResolver(t, pairedBoard(t, 2, 2), instantRules(), gate)
	total := r.View().MovesTotal

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.StopAll()
	r.Wait()

	v := r.View()
	assert.Equal(t, total, v.MovesLeft, "no move spent on an abandoned pair")
	assert.Equal(t, ScoreState{}, v.Score)
	assert.Equal(t, Hidden, v.Cards[0].State)
	assert.Equal(t, Hidden, v.Cards[1].State)
	assert.Empty(t, v.Busy)
	assert.Equal(t, 0, countOf[PairProcessed](rec))
	assert.Equal(t, PhaseIdle, r.phase.Current())

	// the fresh scope is unaffected by the old cancellation
	close(gate.open)
	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()
	assert.Equal(t, Matched, r.View().Cards[0].State)
}

func TestResolverStopAllDuringSettleDelay(t *testing.T) {
	rules := instantRules()
	rules.Timing.MismatchDelay = time.Hour
	r, rec := newTestResolver(t, pairedBoard(t, 2, 2), rules, nil)
	total := r.View().MovesTotal

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(2))
	require.Eventually(t, func() bool {
		return r.View().Cards[0].State == Mismatched
	}, 2*time.Second, 5*time.Millisecond)

	r.StopAll()
	r.Wait()

	v := r.View()
	assert.Equal(t, total-1, v.MovesLeft, "the move committed before cancellation stays spent")
	assert.Equal(t, Hidden, v.Cards[0].State)
	assert.Equal(t, Hidden, v.Cards[2].State)
	assert.Equal(t, 0, countOf[PairProcessed](rec))
	assert.Equal(t, 0, countOf[GameLost](rec))
}

func TestResolverAnimationFailureDoesNotStallTurn(t *testing.T) {
	r, _ := newTestResolver(t, pairedBoard(t, 2, 4), instantRules(), failingAnimator{})

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()
	require.True(t, r.AttemptSelect(2))
	require.True(t, r.AttemptSelect(4))
	r.Wait()

	v := r.View()
	assert.Equal(t, Matched, v.Cards[0].State)
	assert.Equal(t, Hidden, v.Cards[2].State)
	assert.Equal(t, PhaseIdle, r.phase.Current())
}

func TestResolverResetPolicies(t *testing.T) {
	r, rec := newTestResolver(t, pairedBoard(t, 1, 2), instantRules(), nil)
	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()
	require.Equal(t, 1, countOf[GameWon](rec))

	r.Reset(pairedBoard(t, 1, 2), ResetCombo)
	r.phase.Change(PhaseIdle)
	v := r.View()
	assert.Equal(t, 100, v.Score.Score)
	assert.Equal(t, 0, v.Score.Combo)
	assert.Equal(t, v.MovesTotal, v.MovesLeft)
	assert.False(t, v.Ended)

	require.True(t, r.AttemptSelect(0))
	require.True(t, r.AttemptSelect(1))
	r.Wait()
	assert.Equal(t, 2, countOf[GameWon](rec), "the latch re-arms per board")

	r.Reset(pairedBoard(t, 1, 2), ResetFull)
	assert.Equal(t, ScoreState{}, r.View().Score)
}

func TestResolverRestore(t *testing.T) {
	r, _ := newTestResolver(t, pairedBoard(t, 1, 2), instantRules(), nil)

	rs, err := Restore(Snapshot{
		Score: 150, Combo: 1, Matches: 1, MovesLeft: 3, Rows: 2, Columns: 2,
		Cards: []CardSnapshot{
			{ID: 0, PairID: 0, Matched: true}, {ID: 1, PairID: 0, Matched: true},
			{ID: 2, PairID: 1}, {ID: 3, PairID: 1},
		},
	})
	require.NoError(t, err)
	r.Restore(rs)

	v := r.View()
	assert.Equal(t, 3, v.MovesLeft)
	assert.Equal(t, 150, v.Score.Score)
	assert.False(t, r.AttemptSelect(0), "restored matches stay locked")

	r.phase.Change(PhaseIdle)
	require.True(t, r.AttemptSelect(2))
	require.True(t, r.AttemptSelect(3))
	r.Wait()
	assert.Equal(t, 150+150, r.View().Score.Score, "combo carries over from the save")
}
