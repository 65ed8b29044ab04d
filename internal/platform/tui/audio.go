package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// cue is how a sound is rendered on a terminal: a number of bell
// characters and, for end-of-game cues, how long the cue lasts.
type cue struct {
	rings int
	hold  time.Duration
}

var bellCues = map[memory.Sound]cue{
	memory.SoundFlip:     {},
	memory.SoundMatch:    {rings: 1},
	memory.SoundMismatch: {},
	memory.SoundGameOver: {rings: 1, hold: 600 * time.Millisecond},
	memory.SoundVictory:  {rings: 2, hold: 900 * time.Millisecond},
}

// BellAudio implements memory.Audio with the terminal bell. Over SSH the
// writer is the session, so each player hears only their own game.
type BellAudio struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

// NewBellAudio rings on w. A nil writer plays nothing but still holds
// end-of-game cues for their duration.
func NewBellAudio(w io.Writer) *BellAudio {
	return &BellAudio{w: w}
}

// SetMuted turns the bell off or back on.
func (b *BellAudio) SetMuted(muted bool) {
	b.mu.Lock()
	b.muted = muted
	b.mu.Unlock()
}

// Muted reports whether the bell is off.
func (b *BellAudio) Muted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

// Play implements memory.Audio.
func (b *BellAudio) Play(sound memory.Sound) {
	b.ring(bellCues[sound].rings)
}

// PlayTerminalCueAndWait implements memory.Audio.
func (b *BellAudio) PlayTerminalCueAndWait(ctx context.Context, sound memory.Sound) error {
	c := bellCues[sound]
	b.ring(c.rings)
	return wait(ctx, c.hold)
}

func (b *BellAudio) ring(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || b.w == nil || b.muted {
		return
	}
	//nolint:errcheck // Best-effort bell, game continues regardless
	io.WriteString(b.w, strings.Repeat("\a", n))
}

// Ensure BellAudio implements Audio
var _ memory.Audio = (*BellAudio)(nil)
