package memory

import (
	"context"
	"time"
)

// Animator plays card animations. Every method blocks until the animation
// finishes or ctx is cancelled, and must return promptly on cancellation.
type Animator interface {
	RevealOrHide(ctx context.Context, card Card, showFront bool) error
	PlayMatch(ctx context.Context, card Card) error
	PlayMismatch(ctx context.Context, card Card) error
	PlaySpawn(ctx context.Context, card Card, delay time.Duration) error
	HideAll(ctx context.Context, cards []Card) error
}

// Sound identifies an audio cue.
type Sound int

const (
	SoundFlip Sound = iota
	SoundMatch
	SoundMismatch
	SoundGameOver
	SoundVictory
)

// String returns the cue name.
func (s Sound) String() string {
	switch s {
	case SoundFlip:
		return "flip"
	case SoundMatch:
		return "match"
	case SoundMismatch:
		return "mismatch"
	case SoundGameOver:
		return "game_over"
	case SoundVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// Audio plays sound cues.
type Audio interface {
	// Play is fire-and-forget.
	Play(sound Sound)

	// PlayTerminalCueAndWait blocks until the end-of-game cue finishes.
	PlayTerminalCueAndWait(ctx context.Context, sound Sound) error
}

// Store persists the in-progress game. Implementations treat missing or
// corrupt data as "no save" rather than failing the caller.
type Store interface {
	Has(ctx context.Context) bool
	Load(ctx context.Context) (Snapshot, bool)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context)
}

// ScoreRecorder records the final score of a finished game.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, result Result) error
}

// Result summarizes a finished game.
type Result struct {
	GameID   string
	Layout   string
	Won      bool
	Score    int
	MaxCombo int
	Moves    int
}

// NopAnimator completes every animation immediately.
type NopAnimator struct{}

func (NopAnimator) RevealOrHide(ctx context.Context, _ Card, _ bool) error { return ctx.Err() }
func (NopAnimator) PlayMatch(ctx context.Context, _ Card) error            { return ctx.Err() }
func (NopAnimator) PlayMismatch(ctx context.Context, _ Card) error         { return ctx.Err() }
func (NopAnimator) HideAll(ctx context.Context, _ []Card) error            { return ctx.Err() }

func (NopAnimator) PlaySpawn(ctx context.Context, _ Card, delay time.Duration) error {
	return sleep(ctx, delay)
}

// NopAudio plays nothing.
type NopAudio struct{}

func (NopAudio) Play(Sound) {}

func (NopAudio) PlayTerminalCueAndWait(ctx context.Context, _ Sound) error { return ctx.Err() }
