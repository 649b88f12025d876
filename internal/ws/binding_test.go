package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinding_QueueThenDraft(t *testing.T) {
	b := NewBinding("conn-1")
	phase, _ := b.Snapshot()
	assert.Equal(t, PhaseUnbound, phase)

	b.MarkQueued()
	phase, _ = b.Snapshot()
	assert.Equal(t, PhaseQueued, phase)

	b.BindSession("ABC234")
	phase, id := b.Snapshot()
	assert.Equal(t, PhaseBound, phase)
	assert.Equal(t, "ABC234", id)
}

func TestBinding_MarkQueuedNeverClobbersABoundConnection(t *testing.T) {
	b := NewBinding("conn-1")
	b.BindSession("ABC234")

	b.MarkQueued()
	phase, id := b.Snapshot()
	assert.Equal(t, PhaseBound, phase)
	assert.Equal(t, "ABC234", id)
}

func TestBinding_ClearQueuedLosesToADraft(t *testing.T) {
	b := NewBinding("conn-1")
	b.MarkQueued()

	// Draft lands before the cancel: the binding stays with the session.
	b.BindSession("ABC234")
	b.ClearQueued()

	phase, id := b.Snapshot()
	assert.Equal(t, PhaseBound, phase)
	assert.Equal(t, "ABC234", id)
}

func TestBinding_ClearSession(t *testing.T) {
	b := NewBinding("conn-1")
	b.BindSession("ABC234")
	b.ClearSession()

	phase, id := b.Snapshot()
	assert.Equal(t, PhaseUnbound, phase)
	assert.Empty(t, id)

	// Clearing again is a no-op.
	b.ClearSession()
	phase, _ = b.Snapshot()
	assert.Equal(t, PhaseUnbound, phase)
}
