package protocol

// Server -> Client event types.
const (
	EvtSessionCreated          = "sessionCreated"
	EvtSessionJoined           = "sessionJoined"
	EvtParticipantJoined       = "participantJoined"
	EvtMatchmaking             = "matchmaking"
	EvtMatchProgress           = "matchProgress"
	EvtMatchFound              = "matchFound"
	EvtMatchmakingCancelled    = "matchmakingCancelled"
	EvtSessionStarted          = "sessionStarted"
	EvtClockUpdate             = "clockUpdate"
	EvtTerritorySelected       = "territorySelected"
	EvtTerritoryAttempt        = "territoryAttempt"
	EvtTerritoryClaimed        = "territoryClaimed"
	EvtTerritoryAlreadyClaimed = "territoryAlreadyClaimed"
	EvtSessionOver             = "sessionOver"
	EvtParticipantLeft         = "participantLeft"
	EvtHostReassigned          = "hostReassigned"
	EvtSessionDissolved        = "sessionDissolved"
	EvtSessionReset            = "sessionReset"
	EvtActionError             = "actionError"
)

// Reasons carried by SessionOver.
const (
	ReasonTimeUp        = "timeUp"
	ReasonAllCaptured   = "allCaptured"
	ReasonOpponentsLeft = "opponentsLeft"
)

// Reasons carried by SessionDissolved.
const (
	ReasonHostLeft  = "hostLeft"
	ReasonCancelled = "cancelled"
)

// Envelope is the outbound wire frame: a type tag plus a type-specific
// payload struct from this package.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type SessionCreated struct {
	SessionID   string          `json:"session_id"`
	Participant ParticipantView `json:"participant"`
	Session     SessionView     `json:"session"`
}

type SessionJoined struct {
	SessionID   string          `json:"session_id"`
	Participant ParticipantView `json:"participant"`
	Session     SessionView     `json:"session"`
}

type ParticipantJoined struct {
	Participant  ParticipantView   `json:"participant"`
	Participants []ParticipantView `json:"participants"`
}

type Matchmaking struct {
	QueueDepth int `json:"queue_depth"`
}

type MatchProgress struct {
	Participants     []ParticipantView `json:"participants"`
	SecondsRemaining int               `json:"seconds_remaining"`
}

type MatchFound struct {
	SessionID   string          `json:"session_id"`
	Participant ParticipantView `json:"participant"`
	Session     SessionView     `json:"session"`
}

type SessionStarted struct {
	Session SessionView `json:"session"`
}

type ClockUpdate struct {
	SecondsRemaining int `json:"seconds_remaining"`
}

type TerritorySelected struct {
	Territory TerritoryView `json:"territory"`
}

type TerritoryAttempt struct {
	ParticipantID string `json:"participant_id"`
	TerritoryID   string `json:"territory_id"`
}

type TerritoryClaimed struct {
	TerritoryID   string            `json:"territory_id"`
	ParticipantID string            `json:"participant_id"`
	Participants  []ParticipantView `json:"participants"`
}

type TerritoryAlreadyClaimed struct {
	TerritoryID string `json:"territory_id"`
	OwnerID     string `json:"owner_id"`
}

type SessionOver struct {
	Participants []ParticipantView `json:"participants"` // ranked
	Reason       string            `json:"reason"`
}

type ParticipantLeft struct {
	ParticipantID string            `json:"participant_id"`
	Participants  []ParticipantView `json:"participants"`
}

type HostReassigned struct {
	NewHostID string `json:"new_host_id"`
}

type SessionDissolved struct {
	Reason string `json:"reason"`
}

type SessionReset struct {
	Session SessionView `json:"session"`
}

type ActionError struct {
	Message string `json:"message"`
}

// ErrorEnvelope wraps a user-facing failure for the originating
// connection only.
func ErrorEnvelope(msg string) Envelope {
	return Envelope{Type: EvtActionError, Payload: ActionError{Message: msg}}
}
