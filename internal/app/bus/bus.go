package bus

import (
	"reflect"
	"sync"
	"weak"

	"barracuda/internal/config"
)

// Bus is a type-keyed broadcast registry: each distinct message type gets
// exactly one channel, and every send reaches every subscriber still alive
// at send time. Subscribers are strong-owned by their caller (a Receiver);
// the bus holds only weak references and compacts dead ones once it has
// observed more than config.DeadRefGCThreshold of them on a channel.
type Bus struct {
	mu       sync.Mutex
	channels map[reflect.Type]*channel
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{channels: make(map[reflect.Type]*channel)}
}

func (b *Bus) channelFor(t reflect.Type) *channel {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[t]
	if !ok {
		ch = &channel{}
		b.channels[t] = ch
	}

	return ch
}

// subscriber is the concrete, uniformly-typed pointee every weak reference
// in a channel points at, regardless of the message type T a given
// Receiver[T] was created for.
type subscriber struct {
	deliver func(v any)
}

type channel struct {
	mu   sync.Mutex
	subs []weak.Pointer[subscriber]
}

func (c *channel) subscribe(s *subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = append(c.subs, weak.Make(s))
}

func (c *channel) send(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dead := 0

	for _, wp := range c.subs {
		if s := wp.Value(); s != nil {
			s.deliver(v)
		} else {
			dead++
		}
	}

	if dead > config.DeadRefGCThreshold {
		live := make([]weak.Pointer[subscriber], 0, len(c.subs)-dead)

		for _, wp := range c.subs {
			if wp.Value() != nil {
				live = append(live, wp)
			}
		}

		c.subs = live
	}
}

// count reports the raw subscriber list length, including any not-yet-
// compacted dead references - used by tests to observe the GC threshold.
func (c *channel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.subs)
}

// Receiver is a strongly-held subscription to messages of type T.
type Receiver[T any] struct {
	queue     *Queue[T]
	keepAlive *subscriber
}

// Subscribe registers a new receiver for messages of type T on b. Only
// sends that occur after Subscribe returns are observed by it.
func Subscribe[T any](b *Bus) *Receiver[T] {
	q := NewQueue[T]()

	s := &subscriber{deliver: func(v any) {
		q.Push(v.(T))
	}}

	var zero T
	b.channelFor(reflect.TypeOf(zero)).subscribe(s)

	return &Receiver[T]{queue: q, keepAlive: s}
}

// Recv blocks until the next message arrives.
func (r *Receiver[T]) Recv() T {
	return r.queue.Pop()
}

// TryRecv returns the next message without blocking.
func (r *Receiver[T]) TryRecv() (T, bool) {
	return r.queue.TryPop()
}

// Queue exposes the underlying queue so a consumer can arm a shared data
// trigger across several receivers for the multi-channel select.
func (r *Receiver[T]) Queue() *Queue[T] {
	return r.queue
}

// Publish delivers v to every live receiver of type T registered on b.
func Publish[T any](b *Bus, v T) {
	b.channelFor(reflect.TypeOf(v)).send(v)
}

// SubscriberCount reports the raw (pre-GC) subscriber count for type T -
// exported for tests exercising the dead-ref compaction threshold.
func SubscriberCount[T any](b *Bus) int {
	var zero T
	return b.channelFor(reflect.TypeOf(zero)).count()
}
