package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/typeclash/typeclash-backend/internal/game"
	"github.com/typeclash/typeclash-backend/internal/timer"
	"github.com/typeclash/typeclash-backend/pkg/protocol"
)

// Session is the actor owning one game instance. All client actions
// and timer ticks arrive as messages on a single mailbox, so game.State
// has exactly one writer and claim arbitration is race-free by
// construction. Different sessions run fully in parallel.
type Session struct {
	id     string
	inbox  chan Msg
	state  *game.State
	bound  map[string]chan protocol.Envelope
	timers *timer.Coordinator
	detach func(id string) // removes this session from the registry
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id string, rules game.Rules, timers *timer.Coordinator, detach func(string), log *zap.Logger, matching bool) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		id:     id,
		inbox:  make(chan Msg, 64),
		state:  game.NewState(id, rules, matching),
		bound:  make(map[string]chan protocol.Envelope),
		timers: timers,
		detach: detach,
		log:    log.With(zap.String("session_id", id)),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Inbox exposes the mailbox to the ws layer, the matchmaker and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done closes when the actor has stopped. The registry may still hold
// the handle for a moment after teardown, so anyone sending to Inbox or
// waiting on a reply must select on Done as well.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.stop()
			return
		case m := <-s.inbox:
			if done := s.dispatch(m); done {
				return
			}
		}
	}
}

// dispatch handles one message. A panic in a handler abandons that
// action, logs it, and leaves the session running with its previous
// consistent state; every mutation validates before it writes.
func (s *Session) dispatch(m Msg) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("session action abandoned", zap.Any("panic", r))
		}
	}()

	switch msg := m.(type) {
	case Join:
		s.handleJoin(msg)
	case Draft:
		s.handleDraft(msg)
	case BeginCountdown:
		s.handleBeginCountdown()
	case Command:
		s.handleCommand(msg)
	case Disconnect:
		return s.handleDisconnect(msg.ParticipantID)
	case countdownTick:
		s.handleCountdownTick()
	case clockTick:
		s.handleClockTick()
	case Inspect:
		msg.Reply <- View{
			Status:             string(s.state.Status),
			NumBound:           len(s.bound),
			Participants:       rosterView(s.state.Participants),
			Territories:        sessionView(s.state).Territories,
			CountdownRemaining: s.state.CountdownRemaining,
			ClockRemaining:     s.state.ClockRemaining,
		}
	case Shutdown:
		s.stop()
		return true
	}
	return false
}

func (s *Session) handleJoin(msg Join) {
	p, err := s.state.Join(msg.ParticipantID, msg.DisplayName)
	if err != nil {
		msg.Reply <- err
		return
	}
	s.bound[p.ID] = msg.Outbox

	evt := protocol.EvtSessionJoined
	if msg.Created {
		evt = protocol.EvtSessionCreated
	}
	s.sendTo(p.ID, protocol.Envelope{Type: evt, Payload: protocol.SessionJoined{
		SessionID:   s.id,
		Participant: participantView(p),
		Session:     sessionView(s.state),
	}})
	s.broadcastExcept(p.ID, protocol.Envelope{Type: protocol.EvtParticipantJoined, Payload: protocol.ParticipantJoined{
		Participant:  participantView(p),
		Participants: rosterView(s.state.Participants),
	}})
	msg.Reply <- nil
}

func (s *Session) handleDraft(msg Draft) {
	p, err := s.state.Draft(msg.ParticipantID, msg.DisplayName)
	if err != nil {
		msg.Reply <- err
		return
	}
	s.bound[p.ID] = msg.Outbox

	s.sendTo(p.ID, protocol.Envelope{Type: protocol.EvtMatchFound, Payload: protocol.MatchFound{
		SessionID:   s.id,
		Participant: participantView(p),
		Session:     sessionView(s.state),
	}})
	// Late joiners see the countdown exactly where it is; it is never
	// reset by a top-up.
	s.broadcastExcept(p.ID, protocol.Envelope{Type: protocol.EvtMatchProgress, Payload: protocol.MatchProgress{
		Participants:     rosterView(s.state.Participants),
		SecondsRemaining: s.state.CountdownRemaining,
	}})
	msg.Reply <- nil
}

func (s *Session) handleBeginCountdown() {
	s.state.ArmCountdown()
	s.armTimer(timer.KindCountdown)
}

func (s *Session) handleCommand(msg Command) {
	switch msg.Event.Type {
	case protocol.EvtStartSession:
		s.handleStart(msg.ParticipantID)
	case protocol.EvtSelectTerritory:
		s.handleSelect(msg.ParticipantID, msg.Event.TerritoryID)
	case protocol.EvtClaimTerritory:
		s.handleClaim(msg.ParticipantID, msg.Event.TerritoryID, msg.Event.MeasuredSpeed)
	case protocol.EvtPlayAgain:
		s.handlePlayAgain(msg.ParticipantID)
	default:
		s.sendTo(msg.ParticipantID, protocol.ErrorEnvelope("unsupported action"))
	}
}

func (s *Session) handleStart(requesterID string) {
	if err := s.state.StartByHost(requesterID); err != nil {
		s.sendTo(requesterID, protocol.ErrorEnvelope(err.Error()))
		return
	}
	s.armTimer(timer.KindClock)
	s.broadcast(protocol.Envelope{Type: protocol.EvtSessionStarted, Payload: protocol.SessionStarted{
		Session: sessionView(s.state),
	}})
	s.log.Info("session started", zap.Int("participants", len(s.state.Participants)))
}

func (s *Session) handleSelect(requesterID, territoryID string) {
	t, err := s.state.SelectTerritory(requesterID, territoryID)
	if err != nil {
		s.sendTo(requesterID, protocol.ErrorEnvelope(err.Error()))
		return
	}
	s.sendTo(requesterID, protocol.Envelope{Type: protocol.EvtTerritorySelected, Payload: protocol.TerritorySelected{
		Territory: territoryView(t),
	}})
	s.broadcastExcept(requesterID, protocol.Envelope{Type: protocol.EvtTerritoryAttempt, Payload: protocol.TerritoryAttempt{
		ParticipantID: requesterID,
		TerritoryID:   territoryID,
	}})
}

func (s *Session) handleClaim(requesterID, territoryID string, speed float64) {
	res, err := s.state.Claim(requesterID, territoryID, speed)
	if err != nil {
		s.sendTo(requesterID, protocol.ErrorEnvelope(err.Error()))
		return
	}
	if !res.Accepted {
		s.sendTo(requesterID, protocol.Envelope{Type: protocol.EvtTerritoryAlreadyClaimed, Payload: protocol.TerritoryAlreadyClaimed{
			TerritoryID: territoryID,
			OwnerID:     res.OwnerID,
		}})
		return
	}
	s.broadcast(protocol.Envelope{Type: protocol.EvtTerritoryClaimed, Payload: protocol.TerritoryClaimed{
		TerritoryID:   territoryID,
		ParticipantID: requesterID,
		Participants:  rosterView(s.state.Participants),
	}})
	if res.AllCaptured {
		s.end(protocol.ReasonAllCaptured)
	}
}

func (s *Session) handlePlayAgain(requesterID string) {
	if err := s.state.Reset(); err != nil {
		s.sendTo(requesterID, protocol.ErrorEnvelope(err.Error()))
		return
	}
	s.timers.CancelAll(s.id)
	s.broadcast(protocol.Envelope{Type: protocol.EvtSessionReset, Payload: protocol.SessionReset{
		Session: sessionView(s.state),
	}})
}

func (s *Session) handleCountdownTick() {
	// A tick already queued when the countdown finished is inert; it
	// must not re-broadcast progress after sessionStarted.
	if s.state.Status != game.StatusMatching {
		return
	}
	remaining, started := s.state.TickCountdown()
	if !started {
		s.broadcast(protocol.Envelope{Type: protocol.EvtMatchProgress, Payload: protocol.MatchProgress{
			Participants:     rosterView(s.state.Participants),
			SecondsRemaining: remaining,
		}})
		return
	}
	s.timers.Cancel(s.id, timer.KindCountdown)
	s.state.BeginPlay()
	s.armTimer(timer.KindClock)
	s.broadcast(protocol.Envelope{Type: protocol.EvtSessionStarted, Payload: protocol.SessionStarted{
		Session: sessionView(s.state),
	}})
	s.log.Info("match countdown complete", zap.Int("participants", len(s.state.Participants)))
}

func (s *Session) handleClockTick() {
	// A tick already queued when the game ended is inert; it must not
	// emit a clockUpdate after the final sessionOver.
	if s.state.Status != game.StatusPlaying {
		return
	}
	remaining, expired := s.state.TickClock()
	if expired {
		s.end(protocol.ReasonTimeUp)
		return
	}
	s.broadcast(protocol.Envelope{Type: protocol.EvtClockUpdate, Payload: protocol.ClockUpdate{
		SecondsRemaining: remaining,
	}})
}

func (s *Session) handleDisconnect(participantID string) (done bool) {
	delete(s.bound, participantID)

	removal, err := s.state.Remove(participantID)
	if err != nil {
		s.log.Debug("disconnect for unknown participant", zap.String("participant_id", participantID))
		return false
	}

	if removal.Dissolved {
		if removal.DissolveReason == protocol.ReasonHostLeft {
			s.broadcast(protocol.Envelope{Type: protocol.EvtSessionDissolved, Payload: protocol.SessionDissolved{
				Reason: protocol.ReasonHostLeft,
			}})
		}
		s.log.Info("session dissolved", zap.String("reason", removal.DissolveReason))
		s.stop()
		return true
	}

	s.broadcast(protocol.Envelope{Type: protocol.EvtParticipantLeft, Payload: protocol.ParticipantLeft{
		ParticipantID: participantID,
		Participants:  rosterView(s.state.Participants),
	}})
	if removal.NewHostID != "" {
		s.broadcast(protocol.Envelope{Type: protocol.EvtHostReassigned, Payload: protocol.HostReassigned{
			NewHostID: removal.NewHostID,
		}})
	}
	if removal.OpponentsLeft {
		s.timers.CancelAll(s.id)
		s.broadcast(protocol.Envelope{Type: protocol.EvtSessionOver, Payload: protocol.SessionOver{
			Participants: rosterView(s.state.Standings()),
			Reason:       protocol.ReasonOpponentsLeft,
		}})
	}
	return false
}

// end transitions to Ended, cancels both timers before any broadcast
// leaves, then emits the ranked standings.
func (s *Session) end(reason string) {
	s.state.End()
	s.timers.CancelAll(s.id)
	s.broadcast(protocol.Envelope{Type: protocol.EvtSessionOver, Payload: protocol.SessionOver{
		Participants: rosterView(s.state.Standings()),
		Reason:       reason,
	}})
	s.log.Info("session over", zap.String("reason", reason))
}

func (s *Session) armTimer(kind timer.Kind) {
	inbox := s.inbox
	var tick Msg
	if kind == timer.KindCountdown {
		tick = countdownTick{}
	} else {
		tick = clockTick{}
	}
	s.timers.Arm(s.id, kind, time.Second, func() {
		// Never block the coordinator: a wedged mailbox skips ticks
		// instead of queueing duplicates.
		select {
		case inbox <- tick:
		default:
		}
	})
}

// stop cancels timers before the session becomes unreachable, so no
// tick can fire against a torn-down session.
func (s *Session) stop() {
	s.timers.CancelAll(s.id)
	clear(s.bound)
	s.detach(s.id)
	s.cancel()
}

func (s *Session) sendTo(participantID string, ev protocol.Envelope) {
	out, ok := s.bound[participantID]
	if !ok {
		return
	}
	select {
	case out <- ev:
	default:
		// Slow consumer: drop this event rather than stall the actor.
		s.log.Warn("dropping event for slow client",
			zap.String("participant_id", participantID),
			zap.String("event", ev.Type))
	}
}

func (s *Session) broadcast(ev protocol.Envelope) {
	for pid := range s.bound {
		s.sendTo(pid, ev)
	}
}

func (s *Session) broadcastExcept(participantID string, ev protocol.Envelope) {
	for pid := range s.bound {
		if pid != participantID {
			s.sendTo(pid, ev)
		}
	}
}
