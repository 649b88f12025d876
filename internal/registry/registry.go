package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/typeclash/typeclash-backend/internal/game"
	"github.com/typeclash/typeclash-backend/internal/session"
	"github.com/typeclash/typeclash-backend/internal/timer"
)

type Msg interface{ isRegistryMsg() }

// Create builds a new session under a freshly generated id. Id
// generation, collision check and insert happen inside the actor loop,
// so no two sessions can race onto the same id.
type Create struct {
	Matching bool
	Reply    chan *session.Session
}

// Get resolves a session id for routing an inbound event. Reply may be
// nil.
type Get struct {
	ID    string
	Reply chan *session.Session
}

// Remove drops a session after it has torn itself down.
type Remove struct{ ID string }

// Count reports live sessions. Test-only.
type Count struct{ Reply chan int }

type ShutdownAll struct{}

func (Create) isRegistryMsg()      {}
func (Get) isRegistryMsg()         {}
func (Remove) isRegistryMsg()      {}
func (Count) isRegistryMsg()       {}
func (ShutdownAll) isRegistryMsg() {}

// Registry is the process-wide owner of all sessions, one actor goroutine
// guarding the id -> session map.
type Registry struct {
	inbox    chan Msg
	sessions map[string]*session.Session
	rules    game.Rules
	timers   *timer.Coordinator
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, rules game.Rules, timers *timer.Coordinator, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session.Session),
		rules:    rules,
		timers:   timers,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Create:
				msg.Reply <- r.create(msg.Matching)

			case Get:
				msg.Reply <- r.sessions[msg.ID] // may be nil

			case Remove:
				delete(r.sessions, msg.ID)

			case Count:
				msg.Reply <- len(r.sessions)

			case ShutdownAll:
				for _, s := range r.sessions {
					s.Inbox() <- session.Shutdown{}
				}
				clear(r.sessions)
				r.cancel()
			}
		}
	}
}

func (r *Registry) create(matching bool) *session.Session {
	var id string
	for {
		c, err := generateID()
		if err != nil {
			r.log.Error("session id generation failed", zap.Error(err))
			return nil
		}
		if _, taken := r.sessions[c]; !taken {
			id = c
			break
		}
		r.log.Debug("session id collision, regenerating", zap.String("id", c))
	}

	s := session.New(r.ctx, id, r.rules, r.timers, r.detach, r.log, matching)
	r.sessions[id] = s
	r.log.Info("session created", zap.String("session_id", id), zap.Bool("matching", matching))
	return s
}

// detach is handed to each session so its teardown removes the registry
// entry. Non-blocking: a session must never stall on its owner.
func (r *Registry) detach(id string) {
	select {
	case r.inbox <- Remove{ID: id}:
	case <-r.ctx.Done():
	}
}
