package session

import (
	"github.com/typeclash/typeclash-backend/pkg/protocol"
)

type Msg interface{ isSessionMsg() }

// Join seats a participant from createSession/joinSession and binds
// their outbox. Created selects which confirmation event the requester
// receives. Reply carries nil or the seating error.
type Join struct {
	ParticipantID string
	DisplayName   string
	Outbox        chan protocol.Envelope
	Created       bool
	Reply         chan error
}

func (Join) isSessionMsg() {}

// Draft seats a participant assigned by the matchmaking queue.
type Draft struct {
	ParticipantID string
	DisplayName   string
	Outbox        chan protocol.Envelope
	Reply         chan error
}

func (Draft) isSessionMsg() {}

// BeginCountdown arms the match-start countdown. Sent once by the
// matchmaker right after the initial draft.
type BeginCountdown struct{}

func (BeginCountdown) isSessionMsg() {}

// Command is a validated in-session client action.
type Command struct {
	ParticipantID string
	Event         protocol.ClientEvent
}

func (Command) isSessionMsg() {}

// Disconnect reports a transport-level disconnect of a bound
// participant.
type Disconnect struct{ ParticipantID string }

func (Disconnect) isSessionMsg() {}

type countdownTick struct{}

func (countdownTick) isSessionMsg() {}

type clockTick struct{}

func (clockTick) isSessionMsg() {}

// Inspect reflects internal state without data races. Test-only.
type Inspect struct{ Reply chan View }

func (Inspect) isSessionMsg() {}

// Shutdown stops the actor without broadcasting; used on process
// shutdown.
type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// View is a race-free copy of session internals for Inspect.
type View struct {
	Status             string
	NumBound           int
	Participants       []protocol.ParticipantView
	Territories        []protocol.TerritoryView
	CountdownRemaining int
	ClockRemaining     int
}
