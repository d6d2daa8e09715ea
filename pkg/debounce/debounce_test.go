package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 30 * time.Millisecond

func TestTriggerCoalescesBurst(t *testing.T) {
	var calls int32
	d := New(testDelay, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(testDelay / 5)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return atomic.LoadInt32(&calls) > 1 }, 4*testDelay, 5*time.Millisecond)
	assert.False(t, d.Cancel(), "nothing left pending after firing")
}

func TestActionReadsLiveState(t *testing.T) {
	var current atomic.Value
	current.Store("first")

	seen := make(chan string, 1)
	d := New(testDelay, func() { seen <- current.Load().(string) })

	d.Trigger()
	current.Store("second")

	select {
	case v := <-seen:
		assert.Equal(t, "second", v)
	case <-time.After(time.Second):
		t.Fatal("debounced action never fired")
	}
}

func TestCancel(t *testing.T) {
	var calls int32
	d := New(testDelay, func() { atomic.AddInt32(&calls, 1) })

	assert.False(t, d.Cancel(), "nothing scheduled yet")

	d.Trigger()
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	assert.Never(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 4*testDelay, 5*time.Millisecond)
}

func TestZeroDelayFiresRightAway(t *testing.T) {
	var calls int32
	d := New(0, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 100*time.Millisecond, time.Millisecond)
}

func TestReuseAfterFire(t *testing.T) {
	var calls int32
	d := New(testDelay, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
}
