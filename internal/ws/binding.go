package ws

import "sync"

// Phase tracks what a connection is currently attached to.
type Phase int

const (
	PhaseUnbound Phase = iota
	PhaseQueued
	PhaseBound
)

// Binding associates one transport connection with either the
// matchmaking queue or a (sessionID, participantID) pair. The
// matchmaker mutates it from its own goroutine when a queued
// connection is drafted, so access goes through a mutex.
type Binding struct {
	mu            sync.Mutex
	participantID string
	phase         Phase
	sessionID     string
}

func NewBinding(participantID string) *Binding {
	return &Binding{participantID: participantID}
}

func (b *Binding) ParticipantID() string { return b.participantID }

// MarkQueued transitions unbound -> queued. A no-op in any other phase,
// so a draft that lands first is never clobbered.
func (b *Binding) MarkQueued() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase == PhaseUnbound {
		b.phase = PhaseQueued
	}
}

// BindSession attaches the connection to a session. Used on
// create/join and as the matchmaker's draft callback.
func (b *Binding) BindSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = PhaseBound
	b.sessionID = sessionID
}

// ClearQueued leaves the queue if still queued. A concurrent draft
// wins: the binding stays bound to whatever session took the seat.
func (b *Binding) ClearQueued() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase == PhaseQueued {
		b.phase = PhaseUnbound
	}
}

// ClearSession detaches from a dissolved session.
func (b *Binding) ClearSession() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase == PhaseBound {
		b.phase = PhaseUnbound
		b.sessionID = ""
	}
}

// Snapshot returns a consistent (phase, sessionID) pair.
func (b *Binding) Snapshot() (Phase, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase, b.sessionID
}
