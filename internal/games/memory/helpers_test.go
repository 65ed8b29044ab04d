package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Emit(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func countOf[T Event](r *recorder) int {
	n := 0
	for _, evt := range r.all() {
		if _, ok := evt.(T); ok {
			n++
		}
	}
	return n
}

// instantRules has no delays so tests run at CPU speed.
func instantRules() Rules {
	rules := DefaultRules()
	rules.Timing = Timing{}
	return rules
}

// pairedBoard builds a board whose cards are laid out in pair order:
// ids 0,1 share pair 0, ids 2,3 share pair 1, and so on.
func pairedBoard(t *testing.T, rows, columns int) *Board {
	t.Helper()
	cards := make([]*Card, rows*columns)
	for i := range cards {
		cards[i] = &Card{ID: i, PairID: i / 2, Face: i / 2, State: Hidden, Interactive: true}
	}
	board, err := NewBoard(rows, columns, cards)
	require.NoError(t, err)
	return board
}

// newTestResolver returns a resolver with board installed and the phase
// already Idle.
func newTestResolver(t *testing.T, board *Board, rules Rules, animator Animator) (*Resolver, *recorder) {
	t.Helper()
	rec := &recorder{}
	phase := NewPhaseMachine(rec)
	r := NewResolver(ResolverOptions{
		Rules:    rules,
		Animator: animator,
		Emitter:  rec,
		Phase:    phase,
	})
	r.Reset(board, ResetFull)
	phase.Change(PhaseIdle)
	t.Cleanup(func() {
		r.StopAll()
		r.Wait()
	})
	return r, rec
}

func cardState(t *testing.T, r *Resolver, id int) Card {
	t.Helper()
	for _, c := range r.View().Cards {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("card %d not on board", id)
	return Card{}
}

// gateAnimator blocks reveals until open is closed.
type gateAnimator struct {
	NopAnimator
	open chan struct{}
}

func newGateAnimator() *gateAnimator {
	return &gateAnimator{open: make(chan struct{})}
}

func (g *gateAnimator) RevealOrHide(ctx context.Context, _ Card, _ bool) error {
	select {
	case <-g.open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failingAnimator fails every match/mismatch animation.
type failingAnimator struct {
	NopAnimator
}

func (failingAnimator) PlayMatch(context.Context, Card) error    { return errors.New("boom") }
func (failingAnimator) PlayMismatch(context.Context, Card) error { return errors.New("boom") }

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	snap    *Snapshot
	saves   int
	clears  int
	saveErr error
}

func (s *memStore) Has(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap != nil
}

func (s *memStore) Load(context.Context) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return Snapshot{}, false
	}
	return *s.snap, true
}

func (s *memStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snap = &snap
	return nil
}

func (s *memStore) Clear(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.snap = nil
}

func (s *memStore) current() (Snapshot, bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return Snapshot{}, false, s.saves
	}
	return *s.snap, true, s.saves
}

// resultLog is a ScoreRecorder.
type resultLog struct {
	mu      sync.Mutex
	results []Result
}

func (l *resultLog) RecordScore(_ context.Context, result Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
	return nil
}

func (l *resultLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

// waitFor reads sub until an event of type T arrives.
func waitFor[T Event](t *testing.T, sub *ChannelSubscriber) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case evt := <-sub.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}
