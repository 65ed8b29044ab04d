package memory

import "sync"

// Phase is the outer game phase.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseIdle
	PhaseCardRevealing
	PhaseFinished
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseIdle:
		return "idle"
	case PhaseCardRevealing:
		return "card_revealing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PhaseMachine holds the current phase and reports transitions.
type PhaseMachine struct {
	mu      sync.Mutex
	current Phase
	emit    Emitter
}

// NewPhaseMachine starts in PhaseInitializing.
func NewPhaseMachine(emit Emitter) *PhaseMachine {
	if emit == nil {
		emit = discardEmitter{}
	}
	return &PhaseMachine{current: PhaseInitializing, emit: emit}
}

// Current returns the phase.
func (m *PhaseMachine) Current() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Change moves to next. It returns false when already there.
func (m *PhaseMachine) Change(next Phase) bool {
	m.mu.Lock()
	prev := m.current
	if prev == next {
		m.mu.Unlock()
		return false
	}
	m.current = next
	m.mu.Unlock()

	m.emit.Emit(PhaseChanged{From: prev, To: next})
	return true
}

// Transition moves from one phase to another only if the machine is still
// in from. It reports whether the move happened.
func (m *PhaseMachine) Transition(from, to Phase) bool {
	m.mu.Lock()
	if m.current != from || from == to {
		m.mu.Unlock()
		return false
	}
	m.current = to
	m.mu.Unlock()

	m.emit.Emit(PhaseChanged{From: from, To: to})
	return true
}

// CanReveal reports whether card selection is open.
func (m *PhaseMachine) CanReveal() bool {
	p := m.Current()
	return p == PhaseIdle || p == PhaseCardRevealing
}
