package protocol

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Client -> Server event types.
const (
	EvtCreateSession     = "createSession"
	EvtJoinSession       = "joinSession"
	EvtFindMatch         = "findMatch"
	EvtCancelMatchmaking = "cancelMatchmaking"
	EvtStartSession      = "startSession"
	EvtSelectTerritory   = "selectTerritory"
	EvtClaimTerritory    = "claimTerritory"
	EvtPlayAgain         = "playAgain"
)

var ErrUnknownEvent = errors.New("unknown event type")

// ClientEvent is the single inbound envelope. Which fields are required
// depends on Type; Validate enforces that before the event reaches a
// session mailbox.
type ClientEvent struct {
	Type          string  `json:"type"`
	DisplayName   string  `json:"display_name,omitempty"`
	SessionID     string  `json:"session_id,omitempty"`
	TerritoryID   string  `json:"territory_id,omitempty"`
	MeasuredSpeed float64 `json:"measured_speed,omitempty"`
}

// Validate checks the fields required by the event type. It returns a
// user-facing message on failure; no partial state is touched before
// validation passes.
func (e ClientEvent) Validate() error {
	switch e.Type {
	case EvtCreateSession, EvtFindMatch:
		return requireName(e.DisplayName)
	case EvtJoinSession:
		if err := requireName(e.DisplayName); err != nil {
			return err
		}
		if strings.TrimSpace(e.SessionID) == "" {
			return errors.New("session id is required")
		}
		return nil
	case EvtStartSession, EvtPlayAgain, EvtCancelMatchmaking:
		return nil
	case EvtSelectTerritory:
		if strings.TrimSpace(e.TerritoryID) == "" {
			return errors.New("territory id is required")
		}
		return nil
	case EvtClaimTerritory:
		if strings.TrimSpace(e.TerritoryID) == "" {
			return errors.New("territory id is required")
		}
		if e.MeasuredSpeed <= 0 || math.IsNaN(e.MeasuredSpeed) || math.IsInf(e.MeasuredSpeed, 0) {
			return errors.New("typing speed must be a positive number")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("display name is required")
	}
	return nil
}
