package game

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var ErrSessionFull = errors.New("session is full")
var ErrNotJoinable = errors.New("session has already started or ended")
var ErrDuplicateName = errors.New("display name already taken in this session")
var ErrNotHost = errors.New("only the host may do that")
var ErrAlreadyStarted = errors.New("session already started")
var ErrNotPlaying = errors.New("session is not in play")
var ErrNotEnded = errors.New("session has not ended")
var ErrUnknownTerritory = errors.New("unknown territory")
var ErrUnknownParticipant = errors.New("participant not in session")

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusMatching Status = "matching"
	StatusPlaying  Status = "playing"
	StatusEnded    Status = "ended"
)

// State is the aggregate for one game instance: roster, territory
// catalog, lifecycle status and remaining-time counters. It holds no
// locks; the owning session actor is the single writer.
type State struct {
	ID                 string
	Participants       []*Participant
	Territories        []*Territory
	Status             Status
	CountdownRemaining int
	ClockRemaining     int
	CreatedAt          time.Time
	Rules              Rules
}

// NewState builds a fresh session state with an unclaimed catalog.
// Matching sessions are created by the matchmaking draft; everything
// else starts Waiting.
func NewState(id string, rules Rules, matching bool) *State {
	status := StatusWaiting
	if matching {
		status = StatusMatching
	}
	return &State{
		ID:          id,
		Territories: NewCatalog(),
		Status:      status,
		CreatedAt:   time.Now(),
		Rules:       rules,
	}
}

// Join seats a participant via an explicit joinSession. Only Waiting
// sessions are joinable this way.
func (s *State) Join(id, displayName string) (*Participant, error) {
	if s.Status != StatusWaiting {
		return nil, ErrNotJoinable
	}
	return s.seat(id, displayName)
}

// Draft seats a participant assigned by the matchmaking queue. The
// roster of a Matching session keeps growing while its countdown runs.
func (s *State) Draft(id, displayName string) (*Participant, error) {
	if s.Status != StatusWaiting && s.Status != StatusMatching {
		return nil, ErrNotJoinable
	}
	return s.seat(id, displayName)
}

func (s *State) seat(id, displayName string) (*Participant, error) {
	if len(s.Participants) >= s.Rules.Capacity {
		return nil, ErrSessionFull
	}
	for _, p := range s.Participants {
		if strings.EqualFold(p.DisplayName, displayName) {
			return nil, ErrDuplicateName
		}
	}
	p := &Participant{
		ID:          id,
		DisplayName: displayName,
		ColorIndex:  s.nextColorIndex(),
		IsHost:      len(s.Participants) == 0,
	}
	s.Participants = append(s.Participants, p)
	return p, nil
}

// nextColorIndex picks the lowest palette index not already in use, so
// a join after a leave never duplicates a seated color while the roster
// fits the palette.
func (s *State) nextColorIndex() int {
	used := make(map[int]bool, len(s.Participants))
	for _, p := range s.Participants {
		used[p.ColorIndex] = true
	}
	for i := 0; i < PaletteSize(); i++ {
		if !used[i] {
			return i
		}
	}
	return len(s.Participants) % PaletteSize()
}

// StartByHost transitions Waiting -> Playing. Ownership and scores are
// cleared again here as an idempotent safety net.
func (s *State) StartByHost(requesterID string) error {
	p := s.participant(requesterID)
	if p == nil {
		return ErrUnknownParticipant
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if s.Status != StatusWaiting {
		return ErrAlreadyStarted
	}
	s.beginPlay()
	return nil
}

// BeginPlay transitions Matching -> Playing when the countdown hits
// zero. No host check: the timer is the authority.
func (s *State) BeginPlay() {
	s.beginPlay()
}

func (s *State) beginPlay() {
	s.clearBoard()
	s.Status = StatusPlaying
	s.CountdownRemaining = 0
	s.ClockRemaining = s.Rules.ClockSeconds
}

// SelectTerritory is informational only: it validates and reports the
// territory but never mutates ownership.
func (s *State) SelectTerritory(requesterID, territoryID string) (*Territory, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if s.participant(requesterID) == nil {
		return nil, ErrUnknownParticipant
	}
	t := s.territory(territoryID)
	if t == nil {
		return nil, ErrUnknownTerritory
	}
	return t, nil
}

// ClaimResult reports the single consistent outcome of a claim.
type ClaimResult struct {
	Accepted    bool
	Territory   *Territory
	Claimant    *Participant
	OwnerID     string // current owner when not accepted
	AllCaptured bool   // every territory now has an owner
}

// Claim arbitrates a territory claim. Validation happens before any
// mutation, so a rejected claim leaves the state untouched. The session
// actor serializes all claims, which makes first-writer-wins exact:
// of any set of concurrent claims on one territory, exactly one sees
// Accepted and the rest see the owner it installed.
func (s *State) Claim(requesterID, territoryID string, measuredSpeed float64) (ClaimResult, error) {
	if s.Status != StatusPlaying {
		return ClaimResult{}, ErrNotPlaying
	}
	p := s.participant(requesterID)
	if p == nil {
		return ClaimResult{}, ErrUnknownParticipant
	}
	t := s.territory(territoryID)
	if t == nil {
		return ClaimResult{}, ErrUnknownTerritory
	}
	if t.OwnerID != "" {
		return ClaimResult{Territory: t, Claimant: p, OwnerID: t.OwnerID}, nil
	}

	t.OwnerID = p.ID
	p.SpeedSamples = append(p.SpeedSamples, measuredSpeed)
	p.TerritoryCount = s.ownedCount(p.ID)

	return ClaimResult{
		Accepted:    true,
		Territory:   t,
		Claimant:    p,
		OwnerID:     p.ID,
		AllCaptured: s.allCaptured(),
	}, nil
}

// TickClock decrements the game clock by one second. The second return
// is true when the clock just expired.
func (s *State) TickClock() (int, bool) {
	if s.Status != StatusPlaying {
		return s.ClockRemaining, false
	}
	s.ClockRemaining--
	if s.ClockRemaining <= 0 {
		s.ClockRemaining = 0
		return 0, true
	}
	return s.ClockRemaining, false
}

// TickCountdown decrements the matchmaking countdown. The second
// return is true when the countdown just completed.
func (s *State) TickCountdown() (int, bool) {
	if s.Status != StatusMatching {
		return s.CountdownRemaining, false
	}
	s.CountdownRemaining--
	if s.CountdownRemaining <= 0 {
		s.CountdownRemaining = 0
		return 0, true
	}
	return s.CountdownRemaining, false
}

// ArmCountdown sets the countdown counter. Late joiners never reset it.
func (s *State) ArmCountdown() {
	s.CountdownRemaining = s.Rules.CountdownSeconds
}

// End forces the Ended status. Idempotent.
func (s *State) End() {
	s.Status = StatusEnded
}

// Removal describes what dropping a participant did to the session.
type Removal struct {
	Removed        *Participant
	Dissolved      bool
	DissolveReason string
	NewHostID      string
	OpponentsLeft  bool // Playing session forced to end with one player left
}

// Remove drops a participant. A host leaving a Waiting session
// dissolves it; an emptied roster dissolves it; a host leaving
// otherwise hands the host seat to the first remaining participant;
// the last opponent leaving mid-game force-ends it.
func (s *State) Remove(participantID string) (Removal, error) {
	p := s.participant(participantID)
	if p == nil {
		return Removal{}, ErrUnknownParticipant
	}

	if p.IsHost && s.Status == StatusWaiting {
		return Removal{Removed: p, Dissolved: true, DissolveReason: "hostLeft"}, nil
	}

	kept := s.Participants[:0]
	for _, q := range s.Participants {
		if q.ID != participantID {
			kept = append(kept, q)
		}
	}
	s.Participants = kept

	if len(s.Participants) == 0 {
		return Removal{Removed: p, Dissolved: true, DissolveReason: "cancelled"}, nil
	}

	out := Removal{Removed: p}
	if p.IsHost {
		s.Participants[0].IsHost = true
		out.NewHostID = s.Participants[0].ID
	}
	if s.Status == StatusPlaying && len(s.Participants) == 1 {
		s.End()
		out.OpponentsLeft = true
	}
	return out, nil
}

// Reset re-enters Waiting from Ended: ownership cleared, scores and
// samples zeroed, roster retained.
func (s *State) Reset() error {
	if s.Status != StatusEnded {
		return ErrNotEnded
	}
	s.clearBoard()
	s.Status = StatusWaiting
	s.CountdownRemaining = 0
	s.ClockRemaining = 0
	return nil
}

func (s *State) clearBoard() {
	for _, t := range s.Territories {
		t.OwnerID = ""
	}
	for _, p := range s.Participants {
		p.TerritoryCount = 0
		p.SpeedSamples = nil
	}
}

// Standings ranks participants by territory count descending, ties
// broken by average typing speed descending. Stable, so equal entries
// keep seat order.
func (s *State) Standings() []*Participant {
	ranked := make([]*Participant, len(s.Participants))
	copy(ranked, s.Participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TerritoryCount != ranked[j].TerritoryCount {
			return ranked[i].TerritoryCount > ranked[j].TerritoryCount
		}
		return ranked[i].AvgTypingSpeed() > ranked[j].AvgTypingSpeed()
	})
	return ranked
}

func (s *State) participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *State) territory(id string) *Territory {
	for _, t := range s.Territories {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *State) ownedCount(participantID string) int {
	n := 0
	for _, t := range s.Territories {
		if t.OwnerID == participantID {
			n++
		}
	}
	return n
}

func (s *State) allCaptured() bool {
	for _, t := range s.Territories {
		if t.OwnerID == "" {
			return false
		}
	}
	return true
}
