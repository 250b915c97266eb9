package bus

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"barracuda/internal/config"
)

type testMsgA struct {
	Value int
}

type testMsgB struct {
	Value string
}

func Test_Broadcast_AllLiveReceiversObserveSend(t *testing.T) {
	b := New()

	r1 := Subscribe[testMsgA](b)
	r2 := Subscribe[testMsgA](b)

	Publish(b, testMsgA{Value: 7})

	v1 := r1.Recv()
	v2 := r2.Recv()

	assert.Equal(t, 7, v1.Value)
	assert.Equal(t, 7, v2.Value)
}

func Test_Broadcast_LateReceiverMissesPriorSend(t *testing.T) {
	b := New()

	Publish(b, testMsgA{Value: 1})

	r := Subscribe[testMsgA](b)

	_, ok := r.TryRecv()
	assert.False(t, ok)
}

func Test_Broadcast_TypesAreIndependent(t *testing.T) {
	b := New()

	ra := Subscribe[testMsgA](b)
	rb := Subscribe[testMsgB](b)

	Publish(b, testMsgA{Value: 1})

	_, ok := rb.TryRecv()
	assert.False(t, ok)

	va := ra.Recv()
	assert.Equal(t, 1, va.Value)
}

func Test_Broadcast_NoSubscribersSilentlyDrops(t *testing.T) {
	b := New()

	assert.NotPanics(t, func() {
		Publish(b, testMsgA{Value: 1})
	})
}

func Test_Broadcast_DeadReceiverGC(t *testing.T) {
	b := New()

	// Keep one live receiver so the channel exists and has something to
	// deliver to throughout.
	live := Subscribe[testMsgA](b)

	for i := 0; i < config.DeadRefGCThreshold+2; i++ {
		r := Subscribe[testMsgA](b)
		_ = r
		r = nil
	}

	runtime.GC()
	runtime.GC()

	// One send observes the dead refs and, once the threshold is
	// exceeded, compacts them away.
	Publish(b, testMsgA{Value: 42})

	assert.LessOrEqual(t, SubscriberCount[testMsgA](b), config.DeadRefGCThreshold+2)

	v := live.Recv()
	assert.Equal(t, 42, v.Value)
}

func Test_Receiver_Queue_SupportsSharedSelect(t *testing.T) {
	b := New()
	r := Subscribe[testMsgA](b)

	shared := NewSignal()
	r.Queue().ArmTrigger(shared, "a")

	Publish(b, testMsgA{Value: 3})

	tag, ok := shared.WaitTimeout(time.Second)
	assert.True(t, ok)
	assert.Equal(t, "a", tag)
}
