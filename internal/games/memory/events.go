package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Event is a notification from the core to its observers.
type Event interface {
	memoryEvent()
}

// ScoreUpdated carries the new score and the change that produced it.
type ScoreUpdated struct {
	Score int
	Delta int
}

func (ScoreUpdated) memoryEvent() {}

// ComboUpdated carries the current and best combo streak.
type ComboUpdated struct {
	Combo    int
	MaxCombo int
}

func (ComboUpdated) memoryEvent() {}

// MatchesUpdated carries the running match total.
type MatchesUpdated struct {
	Matches int
}

func (MatchesUpdated) memoryEvent() {}

// MovesUpdated is sent once per resolved pair.
type MovesUpdated struct {
	Remaining int
	Total     int
}

func (MovesUpdated) memoryEvent() {}

// PhaseChanged is sent on every game phase transition.
type PhaseChanged struct {
	From Phase
	To   Phase
}

func (PhaseChanged) memoryEvent() {}

// CardRefreshed asks the view to redraw one card.
type CardRefreshed struct {
	Card Card
}

func (CardRefreshed) memoryEvent() {}

// CardInteractivityChanged toggles whether a card accepts clicks.
type CardInteractivityChanged struct {
	CardID      int
	Interactive bool
}

func (CardInteractivityChanged) memoryEvent() {}

// PairProcessed is sent after a pair fully settles; it triggers a save.
type PairProcessed struct {
	FirstID  int
	SecondID int
	Matched  bool
}

func (PairProcessed) memoryEvent() {}

// GameWon is sent once when every pair on the board is matched.
type GameWon struct {
	GameID uuid.UUID
	Score  ScoreState
}

func (GameWon) memoryEvent() {}

// GameLost is sent once when moves run out with pairs left.
type GameLost struct {
	GameID uuid.UUID
	Score  ScoreState
}

func (GameLost) memoryEvent() {}

// BoardReady is sent when a new or restored board becomes playable.
type BoardReady struct {
	GameID   uuid.UUID
	Rows     int
	Columns  int
	Cards    []Card
	Restored bool
}

func (BoardReady) memoryEvent() {}

// BoardUnavailable reports that no board could be dealt, e.g. the face set
// is too small for the configured grid.
type BoardUnavailable struct {
	Err error
}

func (BoardUnavailable) memoryEvent() {}

// Emitter receives events. Implementations must not block and must not call
// back into the emitting component synchronously.
type Emitter interface {
	Emit(evt Event)
}

type discardEmitter struct{}

func (discardEmitter) Emit(Event) {}

// Mailbox is an unbounded, non-blocking event queue. Emit never blocks and
// never drops; a single consumer drains it after a Notify signal.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Event
	notify chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Emit appends evt and wakes the consumer.
func (m *Mailbox) Emit(evt Event) {
	m.mu.Lock()
	m.queue = append(m.queue, evt)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
		// consumer already has a pending wake-up
	}
}

// Notify returns the channel that fires when events are waiting.
func (m *Mailbox) Notify() <-chan struct{} {
	return m.notify
}

// Drain removes and returns every queued event in order.
func (m *Mailbox) Drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.queue
	m.queue = nil
	return events
}

// Subscriber observes coordinator events. Send must not block.
type Subscriber interface {
	Send(evt Event)
}

// ChannelSubscriber delivers events over a buffered channel. When the
// buffer is full the oldest event is dropped so the game never stalls on a
// slow view.
type ChannelSubscriber struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSubscriber creates a subscriber with the given buffer size.
func NewChannelSubscriber(bufferSize int) *ChannelSubscriber {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSubscriber{
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues evt, dropping the oldest event if the buffer is full.
func (s *ChannelSubscriber) Send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
		return
	default:
	}

	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- evt:
	default:
	}
}

// Events returns the receive side of the subscription.
func (s *ChannelSubscriber) Events() <-chan Event {
	return s.events
}

// Done closes when the subscriber is closed.
func (s *ChannelSubscriber) Done() <-chan struct{} {
	return s.done
}

// Close stops delivery. Safe to call more than once.
func (s *ChannelSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
