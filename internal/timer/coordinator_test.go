package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// helpers: blocking receive with a deadline so tests never hang, and a
// quiet-period check for the negative cases.
func recvTick(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for tick")
	}
}

func recvNoTick(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("expected no tick")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestArm_DeliversTicksOnClockAdvance(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	ticks := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { ticks <- struct{}{} }))
	clock.BlockUntil(1)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		recvTick(t, ticks)
	}
	assert.True(t, c.Armed("S1", KindClock))
}

func TestArm_SecondArmOfSameKindIsNoOp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	first := make(chan struct{}, 8)
	second := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { first <- struct{}{} }))
	require.False(t, c.Arm("S1", KindClock, time.Second, func() { second <- struct{}{} }))

	clock.BlockUntil(1)
	clock.Advance(time.Second)

	recvTick(t, first)
	recvNoTick(t, second)
}

func TestArm_KindsAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	countdown := make(chan struct{}, 8)
	game := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindCountdown, time.Second, func() { countdown <- struct{}{} }))
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { game <- struct{}{} }))

	clock.BlockUntil(2)
	clock.Advance(time.Second)

	recvTick(t, countdown)
	recvTick(t, game)
}

func TestCancel_StopsDelivery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	ticks := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { ticks <- struct{}{} }))
	clock.BlockUntil(1)

	c.Cancel("S1", KindClock)
	assert.False(t, c.Armed("S1", KindClock))

	clock.Advance(time.Second)
	recvNoTick(t, ticks)

	// Cancelling an unarmed key is a no-op.
	c.Cancel("S1", KindClock)
	c.Cancel("S1", KindCountdown)
}

func TestCancelAll_StopsBothKinds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	ticks := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindCountdown, time.Second, func() { ticks <- struct{}{} }))
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { ticks <- struct{}{} }))
	clock.BlockUntil(2)

	c.CancelAll("S1")
	clock.Advance(time.Second)

	recvNoTick(t, ticks)
	assert.False(t, c.Armed("S1", KindCountdown))
	assert.False(t, c.Armed("S1", KindClock))
}

func TestArm_SessionsAreIsolated(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, zap.NewNop())

	a := make(chan struct{}, 8)
	b := make(chan struct{}, 8)
	require.True(t, c.Arm("S1", KindClock, time.Second, func() { a <- struct{}{} }))
	require.True(t, c.Arm("S2", KindClock, time.Second, func() { b <- struct{}{} }))
	clock.BlockUntil(2)

	c.CancelAll("S1")
	clock.Advance(time.Second)

	recvTick(t, b)
	recvNoTick(t, a)
}
