package watch

import (
	"sync"
	"time"
)

type pending struct {
	timer *time.Timer
}

// ⏱️ settler delays handling of a path until it has been quiet for delay.
// Each path is tracked on its own; a burst on one path never holds back
// another.
type settler struct {
	delay   time.Duration
	mu      sync.Mutex
	entries map[string]*pending
	stopped bool
}

func newSettler(delay time.Duration) *settler {
	return &settler{
		delay:   delay,
		entries: make(map[string]*pending),
	}
}

// schedule arranges for fire(path) once path has been quiet for the delay.
// A path that is already pending has its timer restarted. With no delay
// fire runs right away on the caller's goroutine.
func (s *settler) schedule(path string, fire func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.delay <= 0 {
		fire(path)
		return
	}
	if entry, ok := s.entries[path]; ok {
		entry.timer.Reset(s.delay)
		return
	}

	entry := &pending{}
	entry.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// a stale timer must not flush a newer entry for the same path
		if s.stopped || s.entries[path] != entry {
			return
		}
		delete(s.entries, path)
		fire(path)
	})
	s.entries[path] = entry
}

// touch restarts the timer of a pending path and reports whether it was
// pending
func (s *settler) touch(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[path]
	if !ok || s.stopped {
		return false
	}
	entry.timer.Reset(s.delay)
	return true
}

// stop cancels every pending path and returns how many were dropped. No
// fire call starts after stop returns.
func (s *settler) stop() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	dropped := len(s.entries)
	for _, entry := range s.entries {
		entry.timer.Stop()
	}
	s.entries = nil
	return dropped
}
