package tui

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// Effect is the animation a card is currently playing.
type Effect int

const (
	EffectNone  Effect = iota
	EffectFlip         // turning over; the new side shows from halfway
	EffectMatch        // pulse on a found pair
	EffectShake        // wobble on a mismatch
	EffectSpawn        // being dealt; invisible until its delay passes
)

// Frame is the state of one card's animation at a point in time.
type Frame struct {
	Effect   Effect
	Progress float64 // 0..1
	Front    bool    // side a flip is turning towards
	Pending  bool    // spawn delay not yet elapsed
}

// ShowsFront reports which side of a flipping card is visible.
func (f Frame) ShowsFront() bool {
	if f.Progress >= 0.5 {
		return f.Front
	}
	return !f.Front
}

type track struct {
	seq    uint64
	effect Effect
	front  bool
	start  time.Time
	dur    time.Duration
}

// TerminalAnimator implements memory.Animator with time-based card
// effects. Each call records a track for the card and blocks for its
// duration; the view samples the tracks every tick.
type TerminalAnimator struct {
	timing memory.Timing
	now    func() time.Time

	mu     sync.Mutex
	seq    uint64
	tracks map[int]track
}

// NewTerminalAnimator creates an animator paced by timing.FlipDuration.
func NewTerminalAnimator(timing memory.Timing) *TerminalAnimator {
	return &TerminalAnimator{
		timing: timing,
		now:    time.Now,
		tracks: make(map[int]track),
	}
}

// RevealOrHide implements memory.Animator.
func (a *TerminalAnimator) RevealOrHide(ctx context.Context, card memory.Card, showFront bool) error {
	return a.play(ctx, card.ID, EffectFlip, showFront, 0, a.timing.FlipDuration)
}

// PlayMatch implements memory.Animator.
func (a *TerminalAnimator) PlayMatch(ctx context.Context, card memory.Card) error {
	return a.play(ctx, card.ID, EffectMatch, true, 0, a.timing.FlipDuration)
}

// PlayMismatch implements memory.Animator.
func (a *TerminalAnimator) PlayMismatch(ctx context.Context, card memory.Card) error {
	return a.play(ctx, card.ID, EffectShake, true, 0, a.timing.FlipDuration)
}

// PlaySpawn implements memory.Animator.
func (a *TerminalAnimator) PlaySpawn(ctx context.Context, card memory.Card, delay time.Duration) error {
	return a.play(ctx, card.ID, EffectSpawn, false, delay, a.timing.FlipDuration/2)
}

// HideAll implements memory.Animator. All cards flip together.
func (a *TerminalAnimator) HideAll(ctx context.Context, cards []memory.Card) error {
	seqs := make(map[int]uint64, len(cards))
	for _, c := range cards {
		seqs[c.ID] = a.begin(c.ID, EffectFlip, false, 0, a.timing.FlipDuration)
	}
	defer func() {
		for id, seq := range seqs {
			a.end(id, seq)
		}
	}()
	return wait(ctx, a.timing.FlipDuration)
}

// Frame samples the animation of a card. It reports false when the card
// is at rest.
func (a *TerminalAnimator) Frame(cardID int) (Frame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.tracks[cardID]
	if !ok {
		return Frame{}, false
	}

	f := Frame{Effect: t.effect, Front: t.front, Progress: 1}
	elapsed := a.now().Sub(t.start)
	switch {
	case elapsed < 0:
		f.Pending = true
		f.Progress = 0
	case t.dur > 0 && elapsed < t.dur:
		f.Progress = float64(elapsed) / float64(t.dur)
	}
	return f, true
}

// Active reports whether any card is animating.
func (a *TerminalAnimator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tracks) > 0
}

func (a *TerminalAnimator) play(ctx context.Context, id int, effect Effect, front bool, delay, dur time.Duration) error {
	seq := a.begin(id, effect, front, delay, dur)
	defer a.end(id, seq)
	return wait(ctx, delay+dur)
}

func (a *TerminalAnimator) begin(id int, effect Effect, front bool, delay, dur time.Duration) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.tracks[id] = track{
		seq:    a.seq,
		effect: effect,
		front:  front,
		start:  a.now().Add(delay),
		dur:    dur,
	}
	return a.seq
}

// end drops the track unless a newer animation replaced it.
func (a *TerminalAnimator) end(id int, seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.tracks[id]; ok && t.seq == seq {
		delete(a.tracks, id)
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure TerminalAnimator implements Animator
var _ memory.Animator = (*TerminalAnimator)(nil)
