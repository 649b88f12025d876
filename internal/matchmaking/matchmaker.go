package matchmaking

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/typeclash/typeclash-backend/internal/game"
	"github.com/typeclash/typeclash-backend/internal/registry"
	"github.com/typeclash/typeclash-backend/internal/session"
	"github.com/typeclash/typeclash-backend/pkg/protocol"
)

type Msg interface{ isMatchmakingMsg() }

// Enqueue adds a connection to the waiting list. Bind is invoked when
// the entry is drafted, so the connection learns which session now owns
// it.
type Enqueue struct {
	ParticipantID string
	DisplayName   string
	Outbox        chan protocol.Envelope
	Bind          func(sessionID string)
}

// Cancel removes a queued connection on explicit request.
type Cancel struct{ ParticipantID string }

// Disconnect removes a queued connection whose transport dropped.
// Reply, when non-nil, reports whether the entry was still queued; a
// false reply means a draft already bound the connection to a session.
type Disconnect struct {
	ParticipantID string
	Reply         chan bool
}

// Inspect reflects queue internals without data races. Test-only.
type Inspect struct{ Reply chan QueueView }

type Shutdown struct{}

func (Enqueue) isMatchmakingMsg()    {}
func (Cancel) isMatchmakingMsg()     {}
func (Disconnect) isMatchmakingMsg() {}
func (Inspect) isMatchmakingMsg()    {}
func (Shutdown) isMatchmakingMsg()   {}

type QueueView struct {
	Depth             int
	MatchingSessionID string
}

type entry struct {
	participantID string
	displayName   string
	outbox        chan protocol.Envelope
	bind          func(sessionID string)
	enqueuedAt    time.Time
}

// Matchmaker owns the ordered waiting list and runs the drafting pass:
// top up the session currently counting down, otherwise draft a fresh
// one once the minimum is queued. One actor goroutine; the pass runs on
// a fixed cadence from the injected clock.
type Matchmaker struct {
	inbox      chan Msg
	entries    []entry
	registry   *registry.Registry
	clock      clockwork.Clock
	interval   time.Duration
	minToStart int
	capacity   int
	matchingID string // session currently in Matching, if any
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(parent context.Context, reg *registry.Registry, rules game.Rules, minToStart int, interval time.Duration, clock clockwork.Clock, log *zap.Logger) *Matchmaker {
	ctx, cancel := context.WithCancel(parent)
	m := &Matchmaker{
		inbox:      make(chan Msg, 64),
		registry:   reg,
		clock:      clock,
		interval:   interval,
		minToStart: minToStart,
		capacity:   rules.Capacity,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
	go m.loop()
	return m
}

func (m *Matchmaker) Inbox() chan<- Msg { return m.inbox }

func (m *Matchmaker) loop() {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return

		case <-ticker.Chan():
			m.draftPass()

		case msg := <-m.inbox:
			switch msg := msg.(type) {
			case Enqueue:
				m.entries = append(m.entries, entry{
					participantID: msg.ParticipantID,
					displayName:   msg.DisplayName,
					outbox:        msg.Outbox,
					bind:          msg.Bind,
					enqueuedAt:    m.clock.Now(),
				})
				m.broadcastDepth()

			case Cancel:
				if e, ok := m.remove(msg.ParticipantID); ok {
					send(e.outbox, protocol.Envelope{Type: protocol.EvtMatchmakingCancelled})
					m.broadcastDepth()
				}

			case Disconnect:
				_, ok := m.remove(msg.ParticipantID)
				if ok {
					m.broadcastDepth()
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case Inspect:
				msg.Reply <- QueueView{Depth: len(m.entries), MatchingSessionID: m.matchingID}

			case Shutdown:
				m.cancel()
				return
			}
		}
	}
}

// draftPass implements the top-up policy: an open Matching session is
// filled first, earliest enqueued first; only when none exists and the
// minimum is queued does a new session get drafted.
func (m *Matchmaker) draftPass() {
	if m.matchingID != "" {
		if s, open := m.matchingSession(); s != nil {
			if open > 0 && len(m.entries) > 0 {
				m.draftInto(s, open)
			}
			return
		}
		m.matchingID = ""
	}

	if len(m.entries) < m.minToStart {
		return
	}

	reply := make(chan *session.Session, 1)
	m.registry.Inbox() <- registry.Create{Matching: true, Reply: reply}
	s := <-reply
	if s == nil {
		m.log.Error("matchmaking draft could not create a session")
		return
	}
	m.matchingID = s.ID()
	drafted := m.draftInto(s, m.capacity)
	s.Inbox() <- session.BeginCountdown{}
	m.log.Info("matchmaking session drafted",
		zap.String("session_id", s.ID()),
		zap.Int("participants", drafted))
}

// matchingSession resolves the tracked Matching session and its open
// seat count. Returns nil when the session is gone or has moved on,
// which clears the way for a fresh draft. The registry can hand back a
// handle whose actor already stopped, so every send and reply selects
// on Done; a dead handle counts as gone rather than wedging the
// matchmaker.
func (m *Matchmaker) matchingSession() (*session.Session, int) {
	reply := make(chan *session.Session, 1)
	m.registry.Inbox() <- registry.Get{ID: m.matchingID, Reply: reply}
	s := <-reply
	if s == nil {
		return nil, 0
	}
	view := make(chan session.View, 1)
	select {
	case s.Inbox() <- session.Inspect{Reply: view}:
	case <-s.Done():
		return nil, 0
	}
	select {
	case v := <-view:
		if v.Status != string(game.StatusMatching) {
			return nil, 0
		}
		return s, m.capacity - len(v.Participants)
	case <-s.Done():
		return nil, 0
	}
}

func (m *Matchmaker) draftInto(s *session.Session, open int) int {
	drafted := 0
	for i := 0; i < len(m.entries) && drafted < open; {
		e := m.entries[i]
		reply := make(chan error, 1)
		select {
		case s.Inbox() <- session.Draft{
			ParticipantID: e.participantID,
			DisplayName:   e.displayName,
			Outbox:        e.outbox,
			Reply:         reply,
		}:
		case <-s.Done():
			return drafted
		}
		var err error
		select {
		case err = <-reply:
		case <-s.Done():
			// Session died mid-draft; the entry stays queued for the
			// next pass.
			return drafted
		}
		switch {
		case err == nil:
			e.bind(s.ID())
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			drafted++
		case errors.Is(err, game.ErrDuplicateName):
			// Leave the entry for a later session; keep filling with
			// whoever is next.
			i++
		default:
			m.log.Warn("draft rejected", zap.Error(err))
			return drafted
		}
	}
	if drafted > 0 {
		m.broadcastDepth()
	}
	return drafted
}

func (m *Matchmaker) remove(participantID string) (entry, bool) {
	for i, e := range m.entries {
		if e.participantID == participantID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return e, true
		}
	}
	return entry{}, false
}

// broadcastDepth tells everyone still queued how deep the queue is.
func (m *Matchmaker) broadcastDepth() {
	ev := protocol.Envelope{Type: protocol.EvtMatchmaking, Payload: protocol.Matchmaking{
		QueueDepth: len(m.entries),
	}}
	for _, e := range m.entries {
		send(e.outbox, ev)
	}
}

func send(out chan protocol.Envelope, ev protocol.Envelope) {
	select {
	case out <- ev:
	default:
	}
}
