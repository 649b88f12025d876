package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/typeclash/typeclash-backend/internal/matchmaking"
	"github.com/typeclash/typeclash-backend/internal/registry"
	"github.com/typeclash/typeclash-backend/internal/session"
	"github.com/typeclash/typeclash-backend/pkg/protocol"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

// User-facing message for a session whose actor is already gone.
var errSessionGone = errors.New("Session not found. Check the session ID and try again.")

// Handler upgrades the connection and runs its read loop. Every
// connection gets an ephemeral uuid handle; the Binding tracks where
// inbound events should be routed and drives the disconnect protocol
// when the read loop exits.
func Handler(reg *registry.Registry, mm *matchmaking.Matchmaker, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		id := uuid.NewString()
		c := &client{
			id:      id,
			conn:    conn,
			outbox:  make(chan protocol.Envelope, outboxSize),
			binding: NewBinding(id),
			reg:     reg,
			mm:      mm,
			log:     log.With(zap.String("participant_id", id)),
		}

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go c.writer(writeCtx)

		defer c.cleanup()
		c.readLoop(r.Context())
	}
}

type client struct {
	id      string
	conn    *websocket.Conn
	outbox  chan protocol.Envelope
	binding *Binding
	reg     *registry.Registry
	mm      *matchmaking.Matchmaker
	log     *zap.Logger
}

func (c *client) writer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.outbox:
			payload, err := json.Marshal(ev)
			if err != nil {
				c.log.Error("marshal outbound event", zap.String("event", ev.Type), zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = c.conn.Write(wctx, websocket.MessageText, payload)
			cancel()
		}
	}
}

func (c *client) readLoop(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("connection read ended", zap.Error(err))
			}
			return
		}

		var ev protocol.ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.send(protocol.ErrorEnvelope("bad json"))
			continue
		}
		if err := ev.Validate(); err != nil {
			c.send(protocol.ErrorEnvelope(err.Error()))
			continue
		}
		c.dispatch(ev)
	}
}

func (c *client) dispatch(ev protocol.ClientEvent) {
	switch ev.Type {
	case protocol.EvtCreateSession:
		c.handleCreate(ev)
	case protocol.EvtJoinSession:
		c.handleJoin(ev)
	case protocol.EvtFindMatch:
		c.handleFindMatch(ev)
	case protocol.EvtCancelMatchmaking:
		c.handleCancelMatchmaking()
	default:
		// In-session action: resolve the bound session and forward.
		c.forward(ev)
	}
}

func (c *client) handleCreate(ev protocol.ClientEvent) {
	if phase, _ := c.binding.Snapshot(); phase != PhaseUnbound {
		c.send(protocol.ErrorEnvelope("already in a session or matchmaking queue"))
		return
	}
	reply := make(chan *session.Session, 1)
	c.reg.Inbox() <- registry.Create{Reply: reply}
	s := <-reply
	if s == nil {
		c.send(protocol.ErrorEnvelope("failed to create session"))
		return
	}
	if err := c.joinSession(s, ev, true); err != nil {
		c.send(protocol.ErrorEnvelope(err.Error()))
		return
	}
	c.binding.BindSession(s.ID())
}

func (c *client) handleJoin(ev protocol.ClientEvent) {
	if phase, _ := c.binding.Snapshot(); phase != PhaseUnbound {
		c.send(protocol.ErrorEnvelope("already in a session or matchmaking queue"))
		return
	}
	id := strings.ToUpper(strings.TrimSpace(ev.SessionID))
	s := c.lookup(id)
	if s == nil {
		c.send(protocol.ErrorEnvelope(errSessionGone.Error()))
		return
	}
	if err := c.joinSession(s, ev, false); err != nil {
		c.send(protocol.ErrorEnvelope(err.Error()))
		return
	}
	c.binding.BindSession(id)
}

// joinSession seats the connection, selecting on the session's Done so
// a handle whose actor already stopped reads as an error instead of a
// hang.
func (c *client) joinSession(s *session.Session, ev protocol.ClientEvent, created bool) error {
	errc := make(chan error, 1)
	msg := session.Join{
		ParticipantID: c.id,
		DisplayName:   strings.TrimSpace(ev.DisplayName),
		Outbox:        c.outbox,
		Created:       created,
		Reply:         errc,
	}
	select {
	case s.Inbox() <- msg:
	case <-s.Done():
		return errSessionGone
	}
	select {
	case err := <-errc:
		return err
	case <-s.Done():
		return errSessionGone
	}
}

func (c *client) handleFindMatch(ev protocol.ClientEvent) {
	if phase, _ := c.binding.Snapshot(); phase != PhaseUnbound {
		c.send(protocol.ErrorEnvelope("already in a session or matchmaking queue"))
		return
	}
	// Queued before the matchmaker hears about us, so a draft can never
	// observe an unbound connection.
	c.binding.MarkQueued()
	c.mm.Inbox() <- matchmaking.Enqueue{
		ParticipantID: c.id,
		DisplayName:   strings.TrimSpace(ev.DisplayName),
		Outbox:        c.outbox,
		Bind:          c.binding.BindSession,
	}
}

func (c *client) handleCancelMatchmaking() {
	phase, _ := c.binding.Snapshot()
	if phase != PhaseQueued {
		c.send(protocol.ErrorEnvelope("not in the matchmaking queue"))
		return
	}
	c.binding.ClearQueued()
	c.mm.Inbox() <- matchmaking.Cancel{ParticipantID: c.id}
}

func (c *client) forward(ev protocol.ClientEvent) {
	phase, sessionID := c.binding.Snapshot()
	if phase != PhaseBound {
		c.send(protocol.ErrorEnvelope("not in a session"))
		return
	}
	s := c.lookup(sessionID)
	if s == nil {
		// Session dissolved underneath us; unbind so the connection
		// can start over.
		c.binding.ClearSession()
		c.send(protocol.ErrorEnvelope(errSessionGone.Error()))
		return
	}
	select {
	case s.Inbox() <- session.Command{ParticipantID: c.id, Event: ev}:
	case <-s.Done():
		c.binding.ClearSession()
		c.send(protocol.ErrorEnvelope(errSessionGone.Error()))
	}
}

// cleanup drives the disconnect protocol after the read loop exits.
// Best-effort: failures here are logged, never propagated.
func (c *client) cleanup() {
	phase, sessionID := c.binding.Snapshot()
	switch phase {
	case PhaseQueued:
		removed := make(chan bool, 1)
		c.mm.Inbox() <- matchmaking.Disconnect{ParticipantID: c.id, Reply: removed}
		if <-removed {
			return
		}
		// A draft won the race: the matchmaker bound us to a session
		// before it saw the disconnect. Bind runs before the entry
		// leaves the queue, so the re-read is guaranteed to see it.
		phase, sessionID = c.binding.Snapshot()
		if phase != PhaseBound {
			return
		}
		fallthrough
	case PhaseBound:
		if s := c.lookup(sessionID); s != nil {
			select {
			case s.Inbox() <- session.Disconnect{ParticipantID: c.id}:
			case <-s.Done():
			}
		}
	}
}

func (c *client) lookup(sessionID string) *session.Session {
	reply := make(chan *session.Session, 1)
	c.reg.Inbox() <- registry.Get{ID: sessionID, Reply: reply}
	return <-reply
}

func (c *client) send(ev protocol.Envelope) {
	select {
	case c.outbox <- ev:
	default:
		c.log.Warn("dropping event, outbox full", zap.String("event", ev.Type))
	}
}
