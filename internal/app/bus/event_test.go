package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Event_TriggerBeforeWait(t *testing.T) {
	e := NewEvent()
	e.Trigger()

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after a prior Trigger")
	}
}

func Test_Event_WaitTimeout_Elapses(t *testing.T) {
	e := NewEvent()

	start := time.Now()
	ok := e.WaitTimeout(20 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func Test_Event_WaitTimeout_Signaled(t *testing.T) {
	e := NewEvent()
	e.Trigger()

	ok := e.WaitTimeout(time.Second)
	assert.True(t, ok)
}

func Test_Event_ClearedAfterWait(t *testing.T) {
	e := NewEvent()
	e.Trigger()
	e.Wait()

	ok := e.WaitTimeout(20 * time.Millisecond)
	assert.False(t, ok, "event should be cleared after a successful Wait")
}

func Test_Event_Reset(t *testing.T) {
	e := NewEvent()
	e.Trigger()
	e.Reset()

	ok := e.WaitTimeout(20 * time.Millisecond)
	assert.False(t, ok)
}

func Test_Event_TriggerIdempotent(t *testing.T) {
	e := NewEvent()
	e.Trigger()
	e.Trigger()

	assert.True(t, e.WaitTimeout(time.Second))
}
