// Package debounce coalesces bursts of work per key.
//
// Each key owns at most one pending task. Scheduling a key that already has
// a pending task cancels and replaces it, so a burst of calls results in a
// single run, Delay after the last call.
package debounce

import (
	"sync"
	"time"
)

// Scheduler runs deferred tasks keyed by K.
type Scheduler[K comparable] struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[K]*task
	seq     uint64
	stopped bool
}

type task struct {
	timer *time.Timer
	gen   uint64
}

// New creates a scheduler with a fixed quiescence delay.
func New[K comparable](delay time.Duration) *Scheduler[K] {
	return &Scheduler[K]{
		delay:   delay,
		pending: make(map[K]*task),
	}
}

// Delay returns the quiescence delay.
func (s *Scheduler[K]) Delay() time.Duration {
	return s.delay
}

// Schedule arranges for fn to run after the delay, replacing any task
// pending for key. fn runs on its own goroutine.
func (s *Scheduler[K]) Schedule(key K, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.pending[key]; ok {
		t.timer.Stop()
	}

	s.seq++
	gen := s.seq
	t := &task{gen: gen}
	// fire blocks on s.mu, so it cannot observe pending before t is stored.
	t.timer = time.AfterFunc(s.delay, func() {
		s.fire(key, gen, fn)
	})
	s.pending[key] = t
}

// Cancel drops the task pending for key. It reports whether one was pending.
func (s *Scheduler[K]) Cancel(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.pending[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.pending, key)
	return true
}

// Pending reports whether a task is pending for key.
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending task. Later calls to Schedule are ignored.
// Safe to call multiple times.
func (s *Scheduler[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, t := range s.pending {
		t.timer.Stop()
		delete(s.pending, key)
	}
}

// fire runs fn only if the task is still the current one for key. A timer
// whose Stop lost the race against expiry finds a newer generation (or no
// entry) and does nothing.
func (s *Scheduler[K]) fire(key K, gen uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.pending[key]
	if !ok || t.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	fn()
}
