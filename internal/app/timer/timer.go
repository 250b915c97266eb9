// Package timer implements the appliance-wide one-shot callback scheduler:
// a single background worker fires callbacks at absolute deadlines and
// supports cooperative, guard-based cancellation.
package timer

import (
	"container/heap"
	"sync"
	"time"

	"barracuda/internal/config"
)

type entry struct {
	deadline  time.Time
	cb        func()
	cancelled bool
	index     int
}

type entryHeap []*entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *entryHeap) Push(x interface{}) { e := x.(*entry); e.index = len(*h); *h = append(*h, e) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return e
}

// Guard is a cancellation handle for a scheduled callback. Cancel is
// idempotent; cancelling after the callback has already started does not
// interrupt it, but guarantees it will not be invoked again.
type Guard struct {
	svc *Service
	e   *entry
}

// Cancel prevents e's callback from firing, if it has not fired already.
func (g *Guard) Cancel() {
	g.svc.mu.Lock()
	g.e.cancelled = true
	g.svc.mu.Unlock()
}

// Service is the single background timer worker.
type Service struct {
	mu      sync.Mutex
	h       entryHeap
	wake    chan struct{}
	stop    chan struct{}
	stopped bool
}

// NewService starts the worker goroutine and returns a ready Service.
func NewService() *Service {
	s := &Service{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	heap.Init(&s.h)

	go s.run()

	return s
}

// Schedule arranges for cb to run after delay elapses, returning a Guard
// that cancels it. Firing is best-effort as soon as possible after the
// deadline, never before.
func (s *Service) Schedule(delay time.Duration, cb func()) *Guard {
	e := &entry{deadline: time.Now().Add(delay), cb: cb}

	s.mu.Lock()
	heap.Push(&s.h, e)
	s.mu.Unlock()

	s.notify()

	return &Guard{svc: s, e: e}
}

func (s *Service) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop halts the worker. Already-fired callbacks are unaffected; pending
// ones will never run.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
}

func (s *Service) run() {
	for {
		sleep, due := s.dueEntries()

		for _, e := range due {
			s.fire(e)
		}

		if len(due) > 0 {
			continue
		}

		select {
		case <-s.stop:
			return
		case <-s.wake:
			continue
		case <-time.After(sleep):
			continue
		}
	}
}

// dueEntries pops every cancelled entry and every entry whose deadline has
// passed, returning the latter to be fired outside the lock, plus the
// duration to sleep if nothing further is due.
func (s *Service) dueEntries() (time.Duration, []*entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entry

	now := time.Now()

	for s.h.Len() > 0 {
		top := s.h[0]

		if top.cancelled {
			heap.Pop(&s.h)
			continue
		}

		if !top.deadline.After(now) {
			heap.Pop(&s.h)
			due = append(due, top)

			continue
		}

		return top.deadline.Sub(now), due
	}

	return config.TimerIdleSleep, due
}

func (s *Service) fire(e *entry) {
	defer func() { _ = recover() }()

	s.mu.Lock()
	cancelled := e.cancelled
	s.mu.Unlock()

	if cancelled {
		return
	}

	e.cb()
}
