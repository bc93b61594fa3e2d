package engine

import "sync"

// sessionLocks serializes engine operations per session identity. Two
// concurrent requests for the same session would otherwise race on
// find-or-create, the payment-data merge, and file replacement, all of which
// are read-modify-write sequences.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock acquires the per-session mutex and returns its release func. Entries
// are reference-counted and dropped when the last holder releases, so the map
// does not grow with session churn.
func (s *sessionLocks) lock(sessionID string) func() {
	s.mu.Lock()
	entry, ok := s.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		s.locks[sessionID] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
