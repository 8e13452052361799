package server

import "sync"

// captainLocks hands out one mutex per captain id. Entries are never
// removed; the set of captains on a floor is small and fixed.
type captainLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCaptainLocks() *captainLocks {
	return &captainLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the captain's mutex and returns its release func.
func (l *captainLocks) lock(captainID string) func() {
	l.mu.Lock()
	m, ok := l.locks[captainID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[captainID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
