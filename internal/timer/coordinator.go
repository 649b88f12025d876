package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Kind distinguishes the two timers a session can hold.
type Kind string

const (
	KindCountdown Kind = "countdown"
	KindClock     Kind = "clock"
)

type key struct {
	sessionID string
	kind      Kind
}

// Coordinator owns every live ticking handle, keyed by (session, kind).
// At most one handle per key exists at any instant; arming an armed
// key is a no-op-and-warn, cancelling an unarmed key is a no-op. The
// clock is injectable so tests drive time with a fake.
type Coordinator struct {
	clock clockwork.Clock
	log   *zap.Logger

	mu     sync.Mutex
	active map[key]chan struct{}
}

func New(clock clockwork.Clock, log *zap.Logger) *Coordinator {
	return &Coordinator{
		clock:  clock,
		log:    log,
		active: make(map[key]chan struct{}),
	}
}

// Arm starts a ticker that calls deliver once per interval until the
// key is cancelled. deliver must not block: it hands the tick to the
// owning session's mailbox, and a session that cannot keep up skips
// ticks rather than queueing duplicates. Returns false if the key was
// already armed.
func (c *Coordinator) Arm(sessionID string, kind Kind, interval time.Duration, deliver func()) bool {
	c.mu.Lock()
	if _, exists := c.active[key{sessionID, kind}]; exists {
		c.mu.Unlock()
		c.log.Warn("timer already armed",
			zap.String("session_id", sessionID),
			zap.String("kind", string(kind)))
		return false
	}
	stop := make(chan struct{})
	c.active[key{sessionID, kind}] = stop
	c.mu.Unlock()

	go c.run(stop, interval, deliver)
	return true
}

func (c *Coordinator) run(stop chan struct{}, interval time.Duration, deliver func()) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			// A cancel that raced the tick wins: no deliver after stop.
			select {
			case <-stop:
				return
			default:
			}
			deliver()
		}
	}
}

// Cancel stops the handle for (session, kind) if one is armed. After
// Cancel returns no further deliver call will start for that handle.
func (c *Coordinator) Cancel(sessionID string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{sessionID, kind}
	if stop, ok := c.active[k]; ok {
		close(stop)
		delete(c.active, k)
	}
}

// CancelAll stops every handle belonging to a session. Called before a
// session leaves the registry so no tick fires against a torn-down
// session.
func (c *Coordinator) CancelAll(sessionID string) {
	c.Cancel(sessionID, KindCountdown)
	c.Cancel(sessionID, KindClock)
}

// Armed reports whether a handle is live for (session, kind).
func (c *Coordinator) Armed(sessionID string, kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[key{sessionID, kind}]
	return ok
}
