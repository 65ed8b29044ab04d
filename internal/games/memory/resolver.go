package memory

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Timing holds the delays used while resolving pairs and dealing boards.
type Timing struct {
	FlipDuration  time.Duration
	MatchDelay    time.Duration
	MismatchDelay time.Duration
	StaggerDelay  time.Duration
	RestartDelay  time.Duration
}

// Rules bundles everything that shapes a game.
type Rules struct {
	Scoring ScoringRules
	Moves   MoveRules
	Timing  Timing
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		Scoring: ScoringRules{
			BaseMatchScore:  100,
			ComboMultiplier: 1.5,
			MismatchPenalty: 10,
		},
		Moves: MoveRules{
			Multiplier: 2.0,
			Base:       4,
		},
		Timing: Timing{
			FlipDuration:  300 * time.Millisecond,
			MatchDelay:    500 * time.Millisecond,
			MismatchDelay: time.Second,
			StaggerDelay:  50 * time.Millisecond,
			RestartDelay:  1500 * time.Millisecond,
		},
	}
}

// ResetPolicy chooses what survives when a new board is installed.
type ResetPolicy int

const (
	// ResetFull zeroes score, combo and matches.
	ResetFull ResetPolicy = iota
	// ResetCombo keeps score and matches, breaks the streak.
	ResetCombo
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Rules    Rules
	Animator Animator
	Audio    Audio
	Emitter  Emitter
	Phase    *PhaseMachine
	Logger   *log.Logger
}

// Resolver is the card controller: it admits selections, resolves pairs
// and signals the end of a game. All board, score and move mutation happens
// under mu; animations and delays run outside it.
type Resolver struct {
	timing   Timing
	animator Animator
	audio    Audio
	emit     Emitter
	phase    *PhaseMachine
	logger   *log.Logger

	mu         sync.Mutex
	base       context.Context
	scope      scope
	board      *Board
	score      *ScoreTracker
	moves      *MoveBudget
	selected   selection
	processing cardSet
	revealed   map[int]chan struct{}
	inFlight   bool
	ended      bool

	wg sync.WaitGroup
}

// NewResolver creates a resolver with no board. Until Reset or Restore is
// called every selection is rejected.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Animator == nil {
		opts.Animator = NopAnimator{}
	}
	if opts.Audio == nil {
		opts.Audio = NopAudio{}
	}
	if opts.Emitter == nil {
		opts.Emitter = discardEmitter{}
	}
	if opts.Phase == nil {
		opts.Phase = NewPhaseMachine(opts.Emitter)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	base := context.Background()
	return &Resolver{
		timing:     opts.Rules.Timing,
		animator:   opts.Animator,
		audio:      opts.Audio,
		emit:       opts.Emitter,
		phase:      opts.Phase,
		logger:     opts.Logger,
		base:       base,
		scope:      newScope(base),
		score:      NewScoreTracker(opts.Rules.Scoring, opts.Emitter),
		moves:      NewMoveBudget(opts.Rules.Moves),
		processing: newCardSet(),
		revealed:   make(map[int]chan struct{}),
	}
}

// Bind makes ctx the parent of every future scope and drops the current one.
func (r *Resolver) Bind(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = ctx
	r.stopLocked()
}

// AttemptSelect asks to reveal a card. It reports whether the selection was
// admitted; a rejected selection has no side effect.
func (r *Resolver) AttemptSelect(cardID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.board == nil || r.ended || r.inFlight {
		return false
	}
	if !r.phase.CanReveal() {
		return false
	}
	card, ok := r.board.Card(cardID)
	if !ok || card.State != Hidden || !card.Interactive {
		return false
	}
	if r.selected.has(cardID) || r.processing.has(cardID) || r.selected.len() >= 2 {
		return false
	}

	r.selected.add(cardID)
	r.processing.add(cardID)
	card.State = Revealing
	r.phase.Transition(PhaseIdle, PhaseCardRevealing)

	done := make(chan struct{})
	r.revealed[cardID] = done
	ctx := r.scope.ctx

	r.audio.Play(SoundFlip)
	r.emit.Emit(CardRefreshed{Card: *card})

	r.wg.Add(1)
	go r.reveal(ctx, *card, done)

	if p, full := r.selected.takePair(); full {
		r.inFlight = true
		r.wg.Add(1)
		go r.resolve(ctx, p)
	}
	return true
}

func (r *Resolver) reveal(ctx context.Context, card Card, done chan struct{}) {
	defer r.wg.Done()

	err := r.animator.RevealOrHide(ctx, card, true)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		r.logger.Warn("reveal animation failed", "card", card.ID, "error", err)
	}

	c, ok := r.board.Card(card.ID)
	if ok && c.State == Revealing {
		c.State = Revealed
		r.emit.Emit(CardRefreshed{Card: *c})
	}
	close(done)
}

// resolve settles one pair. It runs in its own goroutine and abandons the
// pair as soon as its scope is cancelled.
func (r *Resolver) resolve(ctx context.Context, p pair) {
	defer r.wg.Done()

	if err := r.awaitReveal(ctx, p); err != nil {
		return
	}

	r.mu.Lock()
	if ctx.Err() != nil {
		r.mu.Unlock()
		return
	}
	first, second := r.pairCards(p)
	remaining := r.moves.Decrement()
	r.emit.Emit(MovesUpdated{Remaining: remaining, Total: r.moves.Total()})

	matched := first.IsPairWith(*second)
	if matched {
		first.State, second.State = Matched, Matched
		r.score.OnMatch()
		r.audio.Play(SoundMatch)
	} else {
		first.State, second.State = Mismatched, Mismatched
		r.score.OnMismatch()
		r.audio.Play(SoundMismatch)
	}
	a, b := *first, *second
	r.emit.Emit(CardRefreshed{Card: a})
	r.emit.Emit(CardRefreshed{Card: b})
	r.mu.Unlock()

	var ok bool
	if matched {
		ok = r.settleMatch(ctx, p, a, b)
	} else {
		ok = r.settleMismatch(ctx, p, a, b)
	}
	if !ok {
		return
	}

	// settle* return with mu held on success
	defer r.mu.Unlock()

	if r.moves.IsLost(r.board.MatchedPairs(), r.board.TotalPairs()) {
		r.release(p)
		r.finish(GameLost{Score: r.score.State()})
		return
	}

	r.release(p)
	r.emit.Emit(PairProcessed{FirstID: p.first, SecondID: p.second, Matched: matched})
	if !r.ended {
		r.phase.Transition(PhaseCardRevealing, PhaseIdle)
	}
}

// settleMatch plays the match animations, checks for a win and locks both
// cards. On true the caller owns mu.
func (r *Resolver) settleMatch(ctx context.Context, p pair, a, b Card) bool {
	err := join(ctx,
		func(ctx context.Context) error { return r.animator.PlayMatch(ctx, a) },
		func(ctx context.Context) error { return r.animator.PlayMatch(ctx, b) },
	)
	if r.abandoned(ctx, err, "match animation failed") {
		return false
	}

	r.mu.Lock()
	if ctx.Err() != nil {
		r.mu.Unlock()
		return false
	}
	if r.board.MatchedPairs() == r.board.TotalPairs() {
		r.release(p)
		r.finish(GameWon{Score: r.score.State()})
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	if err := sleep(ctx, r.timing.MatchDelay); err != nil {
		return false
	}

	r.mu.Lock()
	if ctx.Err() != nil {
		r.mu.Unlock()
		return false
	}
	for _, id := range []int{p.first, p.second} {
		c, _ := r.board.Card(id)
		c.Interactive = false
		r.emit.Emit(CardInteractivityChanged{CardID: id, Interactive: false})
	}
	return true
}

// settleMismatch shakes both cards, waits, then turns them face down.
// On true the caller owns mu.
func (r *Resolver) settleMismatch(ctx context.Context, p pair, a, b Card) bool {
	err := join(ctx,
		func(ctx context.Context) error { return r.animator.PlayMismatch(ctx, a) },
		func(ctx context.Context) error { return r.animator.PlayMismatch(ctx, b) },
	)
	if r.abandoned(ctx, err, "mismatch animation failed") {
		return false
	}
	if err := sleep(ctx, r.timing.MismatchDelay); err != nil {
		return false
	}

	r.mu.Lock()
	if ctx.Err() != nil {
		r.mu.Unlock()
		return false
	}
	first, second := r.pairCards(p)
	first.State, second.State = Hidden, Hidden
	a, b = *first, *second
	r.mu.Unlock()

	err = join(ctx,
		func(ctx context.Context) error { return r.animator.RevealOrHide(ctx, a, false) },
		func(ctx context.Context) error { return r.animator.RevealOrHide(ctx, b, false) },
	)
	if r.abandoned(ctx, err, "hide animation failed") {
		return false
	}

	r.mu.Lock()
	if ctx.Err() != nil {
		r.mu.Unlock()
		return false
	}
	r.emit.Emit(CardRefreshed{Card: a})
	r.emit.Emit(CardRefreshed{Card: b})
	return true
}

// awaitReveal blocks until both cards of p finished revealing.
func (r *Resolver) awaitReveal(ctx context.Context, p pair) error {
	for _, id := range []int{p.first, p.second} {
		r.mu.Lock()
		done := r.revealed[id]
		r.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// abandoned reports whether the continuation must stop. Animation errors
// other than cancellation are logged and play continues.
func (r *Resolver) abandoned(ctx context.Context, err error, msg string) bool {
	if ctx.Err() != nil {
		return true
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn(msg, "error", err)
	}
	return false
}

func (r *Resolver) pairCards(p pair) (*Card, *Card) {
	first, _ := r.board.Card(p.first)
	second, _ := r.board.Card(p.second)
	return first, second
}

// release frees both cards of p for selection and opens the next turn.
func (r *Resolver) release(p pair) {
	r.processing.remove(p.first, p.second)
	delete(r.revealed, p.first)
	delete(r.revealed, p.second)
	r.inFlight = false
}

// finish fires the game-end signal at most once per board.
func (r *Resolver) finish(evt Event) {
	if r.ended {
		return
	}
	r.ended = true
	r.emit.Emit(evt)
}

// StopAll cancels every in-flight continuation and clears the selection and
// processing sets. Cards caught mid-turn fall back to Hidden and an open turn
// returns to Idle.
func (r *Resolver) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Resolver) stopLocked() {
	r.scope.cancel()
	r.scope = newScope(r.base)
	r.selected.clear()
	r.processing.clear()
	clear(r.revealed)
	r.inFlight = false
	r.phase.Transition(PhaseCardRevealing, PhaseIdle)

	if r.board == nil {
		return
	}
	for _, c := range r.board.Cards {
		switch c.State {
		case Revealing, Revealed, Mismatched:
			c.State = Hidden
			r.emit.Emit(CardRefreshed{Card: *c})
		}
	}
}

// Reset installs a new board, sizes the move budget for it and applies the
// reset policy to the score.
func (r *Resolver) Reset(board *Board, policy ResetPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.board = board
	r.ended = false

	switch policy {
	case ResetFull:
		r.score.Reset()
	case ResetCombo:
		r.score.ResetCombo()
	}

	if board != nil {
		r.moves.Initialize(board.TotalPairs())
		r.emit.Emit(MovesUpdated{Remaining: r.moves.Remaining(), Total: r.moves.Total()})
	}
}

// Restore installs a board and counters reconstructed from a snapshot.
func (r *Resolver) Restore(rs Restored) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.board = rs.Board
	r.ended = false
	r.score.Restore(rs.Score)
	r.moves.Initialize(rs.Board.TotalPairs())
	r.moves.Restore(rs.MovesLeft)
	r.emit.Emit(MovesUpdated{Remaining: r.moves.Remaining(), Total: r.moves.Total()})
}

// Snapshot captures the current board and counters. It reports false when
// no board is installed.
func (r *Resolver) Snapshot() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.board == nil {
		return Snapshot{}, false
	}
	return Capture(r.board, r.score.State(), r.moves), true
}

// View is a consistent read of the resolver's state.
type View struct {
	Rows       int
	Columns    int
	Cards      []Card
	Score      ScoreState
	MovesLeft  int
	MovesTotal int
	Selected   int
	Busy       []int
	Ended      bool
}

// At returns the card at grid position (row, col).
func (v View) At(row, col int) (Card, bool) {
	if row < 0 || row >= v.Rows || col < 0 || col >= v.Columns {
		return Card{}, false
	}
	i := row*v.Columns + col
	if i >= len(v.Cards) {
		return Card{}, false
	}
	return v.Cards[i], true
}

// View returns a copy of the current state.
func (r *Resolver) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{
		Score:      r.score.State(),
		MovesLeft:  r.moves.Remaining(),
		MovesTotal: r.moves.Total(),
		Selected:   r.selected.len(),
		Ended:      r.ended,
	}
	if r.board != nil {
		v.Rows, v.Columns = r.board.Rows, r.board.Columns
		v.Cards = r.board.Views()
	}
	for id := range r.processing {
		v.Busy = append(v.Busy, id)
	}
	return v
}

// Processing reports whether a card is mid-animation.
func (r *Resolver) Processing(cardID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processing.has(cardID)
}

// Wait blocks until every continuation started so far has returned.
func (r *Resolver) Wait() {
	r.wg.Wait()
}
