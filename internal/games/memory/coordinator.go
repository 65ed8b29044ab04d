package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrNotStarted is returned by operations that need a running coordinator.
	ErrNotStarted = errors.New("memory: coordinator not started")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("memory: coordinator already started")
)

// DefaultFaceCount is used when Options.FaceCount is unset.
const DefaultFaceCount = 18

// flushTimeout bounds the final save written while shutting down.
const flushTimeout = 2 * time.Second

// Options configures a Coordinator. Only Layouts and FaceCount shape the
// board; every collaborator is optional.
type Options struct {
	Rules        Rules
	Layouts      []Layout // the first one is the default
	RandomLayout bool
	FaceCount    int

	Animator Animator
	Audio    Audio
	Store    Store
	Recorder ScoreRecorder
	Logger   *log.Logger
	Rand     *rand.Rand
}

// Status is a consistent read of the whole game.
type Status struct {
	View
	Phase  Phase
	GameID uuid.UUID
}

// Coordinator owns the game phase, fans events out to subscribers, saves
// after every settled pair and restarts the board when a game ends.
type Coordinator struct {
	opts     Options
	logger   *log.Logger
	mailbox  *Mailbox
	phase    *PhaseMachine
	resolver *Resolver

	rngMu sync.Mutex
	rng   *rand.Rand

	mu          sync.Mutex
	subscribers []Subscriber
	gameID      uuid.UUID
	generation  uint64
	cancel      context.CancelFunc

	// restartMu serializes board replacement.
	restartMu sync.Mutex

	// saves holds the latest pending write; nil means clear the slot.
	saves chan *Snapshot

	wg sync.WaitGroup
}

// NewCoordinator wires a resolver and phase machine around opts.
func NewCoordinator(opts Options) *Coordinator {
	if len(opts.Layouts) == 0 {
		opts.Layouts = []Layout{{Rows: 2, Columns: 2}}
	}
	if opts.FaceCount <= 0 {
		opts.FaceCount = DefaultFaceCount
	}
	if opts.Animator == nil {
		opts.Animator = NopAnimator{}
	}
	if opts.Audio == nil {
		opts.Audio = NopAudio{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	mailbox := NewMailbox()
	phase := NewPhaseMachine(mailbox)
	c := &Coordinator{
		opts:    opts,
		logger:  opts.Logger,
		mailbox: mailbox,
		phase:   phase,
		rng:     opts.Rand,
		saves:   make(chan *Snapshot, 1),
	}
	c.resolver = NewResolver(ResolverOptions{
		Rules:    opts.Rules,
		Animator: opts.Animator,
		Audio:    opts.Audio,
		Emitter:  mailbox,
		Phase:    phase,
		Logger:   opts.Logger,
	})
	return c
}

// Start runs the event loop and installs the first board: the saved game
// if the store has a valid one, otherwise a fresh deal. A board that cannot
// be dealt is reported as BoardUnavailable and returned as an error; the
// coordinator keeps running in PhaseInitializing.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.resolver.Bind(runCtx)

	c.wg.Add(2)
	go c.run(runCtx)
	go c.saveLoop(runCtx)

	c.restartMu.Lock()
	defer c.restartMu.Unlock()

	restored, policy := c.restore(runCtx)
	if restored {
		return nil
	}
	return c.deal(runCtx, policy)
}

// Stop cancels everything in flight, flushes the pending save and waits for
// background work to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	c.resolver.StopAll()
	c.wg.Wait()
	c.resolver.Wait()
}

// Select forwards a card click to the resolver.
func (c *Coordinator) Select(cardID int) bool {
	return c.resolver.AttemptSelect(cardID)
}

// Restart deals a fresh board with a full score reset.
func (c *Coordinator) Restart(ctx context.Context) error {
	c.mu.Lock()
	started := c.cancel != nil
	gen := c.generation
	c.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	return c.restart(ctx, gen, ResetFull)
}

// Subscribe registers sub for every event until the returned func is called.
func (c *Coordinator) Subscribe(sub Subscriber) (unsubscribe func()) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, sub)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subscribers = slices.DeleteFunc(c.subscribers, func(s Subscriber) bool {
			return s == sub
		})
	}
}

// Snapshot captures the live game.
func (c *Coordinator) Snapshot() (Snapshot, bool) {
	return c.resolver.Snapshot()
}

// Status returns the board, counters and phase.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	id := c.gameID
	c.mu.Unlock()
	return Status{
		View:   c.resolver.View(),
		Phase:  c.phase.Current(),
		GameID: id,
	}
}

// Phase returns the current game phase.
func (c *Coordinator) Phase() Phase {
	return c.phase.Current()
}

// GameID identifies the board currently in play.
func (c *Coordinator) GameID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.mailbox.Notify():
			for _, evt := range c.mailbox.Drain() {
				c.dispatch(ctx, evt)
			}
		}
	}
}

func (c *Coordinator) dispatch(ctx context.Context, evt Event) {
	switch e := evt.(type) {
	case GameWon:
		e.GameID = c.GameID()
		evt = e
	case GameLost:
		e.GameID = c.GameID()
		evt = e
	}

	c.broadcast(evt)

	switch e := evt.(type) {
	case PairProcessed:
		c.persist()
	case GameWon:
		c.endGame(ctx, true, e.Score)
	case GameLost:
		c.endGame(ctx, false, e.Score)
	}
}

func (c *Coordinator) broadcast(evt Event) {
	c.mu.Lock()
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Send(evt)
	}
}

// endGame runs once per board: Finished, halt, record, cue, then restart.
func (c *Coordinator) endGame(ctx context.Context, won bool, score ScoreState) {
	if !c.phase.Change(PhaseFinished) {
		return
	}
	c.resolver.StopAll()

	c.mu.Lock()
	gen, id := c.generation, c.gameID
	c.mu.Unlock()
	view := c.resolver.View()
	if won {
		// the cleared board holds the carried score until the next deal is saved
		c.persist()
	} else {
		c.offerSave(nil)
	}

	c.logger.Info("game over", "game", id, "won", won, "score", score.Score, "max_combo", score.MaxCombo)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.record(ctx, Result{
			GameID:   id.String(),
			Layout:   Layout{Rows: view.Rows, Columns: view.Columns}.String(),
			Won:      won,
			Score:    score.Score,
			MaxCombo: score.MaxCombo,
			Moves:    view.MovesTotal - view.MovesLeft,
		})

		cue, policy := SoundGameOver, ResetFull
		if won {
			cue, policy = SoundVictory, ResetCombo
		}
		if err := c.opts.Audio.PlayTerminalCueAndWait(ctx, cue); err != nil && ctx.Err() == nil {
			c.logger.Warn("terminal cue failed", "error", err)
		}
		if err := sleep(ctx, c.opts.Rules.Timing.RestartDelay); err != nil {
			return
		}
		if err := c.restart(ctx, gen, policy); err != nil && ctx.Err() == nil {
			c.logger.Error("restart failed", "error", err)
		}
	}()
}

func (c *Coordinator) record(ctx context.Context, result Result) {
	if c.opts.Recorder == nil {
		return
	}
	if err := c.opts.Recorder.RecordScore(ctx, result); err != nil {
		c.logger.Warn("failed to record score", "error", err)
	}
}

// restart replaces the board unless another restart already did since gen.
func (c *Coordinator) restart(ctx context.Context, gen uint64, policy ResetPolicy) error {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()

	c.mu.Lock()
	stale := c.generation != gen
	c.mu.Unlock()
	if stale {
		return nil
	}

	c.resolver.StopAll()
	c.phase.Change(PhaseInitializing)

	if err := c.opts.Animator.HideAll(ctx, c.resolver.View().Cards); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("hide animation failed", "error", err)
	}
	return c.deal(ctx, policy)
}

// deal generates a board for the next layout and presents it.
// Callers hold restartMu.
func (c *Coordinator) deal(ctx context.Context, policy ResetPolicy) error {
	c.phase.Change(PhaseInitializing)

	layout := c.pickLayout()
	c.rngMu.Lock()
	board, err := GenerateBoard(layout.Rows, layout.Columns, c.opts.FaceCount, c.rng)
	c.rngMu.Unlock()
	if err != nil {
		c.mailbox.Emit(BoardUnavailable{Err: err})
		return fmt.Errorf("memory: deal %s board: %w", layout, err)
	}

	c.resolver.Reset(board, policy)
	c.present(ctx, false)
	c.persist()
	return nil
}

// restore installs the saved game, if there is a usable one. Otherwise it
// returns the reset policy the fresh deal should use: a save of a won board
// hands its score on to the next one.
func (c *Coordinator) restore(ctx context.Context) (bool, ResetPolicy) {
	store := c.opts.Store
	if store == nil || !store.Has(ctx) {
		return false, ResetFull
	}
	snap, ok := store.Load(ctx)
	if !ok {
		return false, ResetFull
	}

	rs, err := Restore(snap)
	if err == nil {
		err = c.checkFaces(rs.Board)
	}
	if err != nil {
		c.logger.Warn("discarding saved game", "error", err)
		store.Clear(ctx)
		return false, ResetFull
	}
	if rs.Won() {
		c.logger.Info("saved board already cleared, dealing the next one", "score", snap.Score)
		c.resolver.Restore(rs)
		return false, ResetCombo
	}
	if rs.Finished() {
		c.logger.Info("saved game already lost, dealing a new one")
		store.Clear(ctx)
		return false, ResetFull
	}

	c.resolver.Restore(rs)
	c.present(ctx, true)
	c.logger.Info("restored saved game", "layout", Layout{Rows: snap.Rows, Columns: snap.Columns}, "score", snap.Score)
	return true, ResetFull
}

// present announces the installed board, plays the spawn stagger and opens
// the board for selection.
func (c *Coordinator) present(ctx context.Context, restored bool) {
	c.mu.Lock()
	c.gameID = uuid.New()
	c.generation++
	id := c.gameID
	c.mu.Unlock()

	view := c.resolver.View()
	c.mailbox.Emit(BoardReady{
		GameID:   id,
		Rows:     view.Rows,
		Columns:  view.Columns,
		Cards:    view.Cards,
		Restored: restored,
	})

	stagger := c.opts.Rules.Timing.StaggerDelay
	spawns := make([]func(context.Context) error, len(view.Cards))
	for i, card := range view.Cards {
		spawns[i] = func(ctx context.Context) error {
			return c.opts.Animator.PlaySpawn(ctx, card, time.Duration(i)*stagger)
		}
	}
	if err := join(ctx, spawns...); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("spawn animation failed", "error", err)
	}

	c.phase.Change(PhaseIdle)
}

func (c *Coordinator) checkFaces(board *Board) error {
	for _, card := range board.Cards {
		if card.Face < 0 || card.Face >= c.opts.FaceCount {
			return fmt.Errorf("%w: face %d outside a set of %d", ErrInvalidSnapshot, card.Face, c.opts.FaceCount)
		}
	}
	return nil
}

func (c *Coordinator) pickLayout() Layout {
	if !c.opts.RandomLayout || len(c.opts.Layouts) == 1 {
		return c.opts.Layouts[0]
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.opts.Layouts[c.rng.Intn(len(c.opts.Layouts))]
}

// persist queues a save of the live game.
func (c *Coordinator) persist() {
	if c.opts.Store == nil {
		return
	}
	snap, ok := c.resolver.Snapshot()
	if !ok {
		return
	}
	snap.Timestamp = time.Now().Unix()
	c.offerSave(&snap)
}

// offerSave replaces whatever write is pending with snap.
func (c *Coordinator) offerSave(snap *Snapshot) {
	if c.opts.Store == nil {
		return
	}
	for {
		select {
		case c.saves <- snap:
			return
		default:
		}
		select {
		case <-c.saves:
		default:
		}
	}
}

// saveLoop writes saves in order off the game path. On shutdown the last
// pending write is flushed with a short deadline.
func (c *Coordinator) saveLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case snap := <-c.saves:
			c.write(ctx, snap)
		case <-ctx.Done():
			select {
			case snap := <-c.saves:
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
				c.write(flushCtx, snap)
				cancel()
			default:
			}
			return
		}
	}
}

func (c *Coordinator) write(ctx context.Context, snap *Snapshot) {
	if snap == nil {
		c.opts.Store.Clear(ctx)
		return
	}
	if err := c.opts.Store.Save(ctx, *snap); err != nil {
		c.logger.Warn("failed to save game", "error", err)
	}
}
