package handler

import "sync"

// purchaseLocks allows one add-on purchase in flight per session.
type purchaseLocks struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newPurchaseLocks() *purchaseLocks {
	return &purchaseLocks{active: make(map[string]struct{})}
}

func (l *purchaseLocks) acquire(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.active[sessionID]; busy {
		return false
	}
	l.active[sessionID] = struct{}{}
	return true
}

func (l *purchaseLocks) release(sessionID string) {
	l.mu.Lock()
	delete(l.active, sessionID)
	l.mu.Unlock()
}
