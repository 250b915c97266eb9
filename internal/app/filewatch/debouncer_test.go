package filewatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Debouncer_Trigger_FiresAfterDelay(t *testing.T) {
	done := make(chan struct{})

	d := newDebouncer(10*time.Millisecond, func() { close(done) })
	defer d.Stop()

	d.Trigger()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer callback was not called")
	}
}

func Test_Debouncer_CoalescesRapidTriggers(t *testing.T) {
	var (
		mu        sync.Mutex
		callCount int
	)

	done := make(chan struct{}, 10)

	d := newDebouncer(50*time.Millisecond, func() {
		mu.Lock()
		callCount++
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond) //nolint:forbidigo // intentional - testing debounce coalescing
	}

	select {
	case <-done:
		mu.Lock()
		assert.Equal(t, 1, callCount, "should coalesce into a single callback")
		mu.Unlock()
	case <-time.After(time.Second):
		t.Fatal("debouncer callback was not called")
	}
}

func Test_Debouncer_Stop_CancelsPendingCallback(t *testing.T) {
	called := make(chan struct{})

	d := newDebouncer(10*time.Millisecond, func() { close(called) })

	d.Trigger()
	d.Stop()

	select {
	case <-called:
		t.Fatal("callback should not be called after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Debouncer_Stop_PreventsNewTriggers(t *testing.T) {
	called := make(chan struct{})

	d := newDebouncer(10*time.Millisecond, func() { close(called) })

	d.Stop()
	d.Trigger()

	select {
	case <-called:
		t.Fatal("callback should not be called after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
