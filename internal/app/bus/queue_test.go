package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Queue_PushPop_PreservesOrder(t *testing.T) {
	q := NewQueue[int]()

	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	for i := 0; i < 5; i++ {
		v, ok := q.TryPop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}

	_, ok := q.TryPop()
	assert.False(t, ok)
}

func Test_Queue_Pop_Blocks(t *testing.T) {
	q := NewQueue[string]()

	done := make(chan string)
	go func() { done <- q.Pop() }()

	time.Sleep(10 * time.Millisecond)
	q.Push("hello")

	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push")
	}
}

func Test_Queue_PopTimeout_ReturnsImmediatelyWhenPresent(t *testing.T) {
	q := NewQueue[int]()
	q.Push(42)

	start := time.Now()
	v, ok := q.PopTimeout(time.Second)
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func Test_Queue_PopTimeout_Elapses(t *testing.T) {
	q := NewQueue[int]()

	_, ok := q.PopTimeout(20 * time.Millisecond)
	assert.False(t, ok)
}

func Test_Queue_Len(t *testing.T) {
	q := NewQueue[int]()
	assert.Equal(t, 0, q.Len())

	q.Push(1)
	q.Push(2)
	assert.Equal(t, 2, q.Len())

	q.TryPop()
	assert.Equal(t, 1, q.Len())
}

func Test_Queue_DataTrigger_FiresOnEachPush(t *testing.T) {
	q := NewQueue[int]()
	sig := NewSignal()

	q.ArmTrigger(sig, "queue-a")

	q.Push(1)
	tag := sig.Wait()
	assert.Equal(t, "queue-a", tag)

	q.Push(2)
	tag = sig.Wait()
	assert.Equal(t, "queue-a", tag, "trigger stays armed across multiple pushes")
}

func Test_Queue_DataTrigger_ReplacedByNewArm(t *testing.T) {
	q := NewQueue[int]()
	sigOld := NewSignal()
	sigNew := NewSignal()

	q.ArmTrigger(sigOld, "old")
	q.ArmTrigger(sigNew, "new")

	q.Push(1)

	_, ok := sigOld.WaitTimeout(20 * time.Millisecond)
	assert.False(t, ok, "old trigger must not fire after being replaced")

	tag, ok := sigNew.WaitTimeout(time.Second)
	assert.True(t, ok)
	assert.Equal(t, "new", tag)
}

func Test_Queue_DataTrigger_Disarm(t *testing.T) {
	q := NewQueue[int]()
	sig := NewSignal()

	q.ArmTrigger(sig, "tag")
	q.DisarmTrigger()
	q.Push(1)

	_, ok := sig.WaitTimeout(20 * time.Millisecond)
	assert.False(t, ok)
}

func Test_MultiChannelSelect_DistinctTags(t *testing.T) {
	qa := NewQueue[int]()
	qb := NewQueue[int]()
	shared := NewSignal()

	qa.ArmTrigger(shared, "a")
	qb.ArmTrigger(shared, "b")

	qb.Push(99)

	tag := shared.Wait()
	assert.Equal(t, "b", tag)

	v, ok := qb.TryPop()
	assert.True(t, ok)
	assert.Equal(t, 99, v)
}
