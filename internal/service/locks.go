package service

import "sync"

// SessionLocks serializes history read-modify-write per session id so
// concurrent questions against the same session cannot lose turns. One
// instance is shared between the chat and session services; locks for
// different sessions never contend.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionLocks creates an empty lock table.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the session and returns its unlock func.
func (l *SessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// forget drops the lock entry for a deleted session.
func (l *SessionLocks) forget(sessionID string) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}
