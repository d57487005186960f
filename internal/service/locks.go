package service

import "sync"

// PositionLocks serializes writers per stock position so that concurrent
// submissions against the same history cannot interleave.
type PositionLocks struct {
	mu    sync.Mutex
	locks map[string]*positionLock
}

type positionLock struct {
	mu   sync.Mutex
	refs int
}

// NewPositionLocks creates an empty lock table.
func NewPositionLocks() *PositionLocks {
	return &PositionLocks{locks: make(map[string]*positionLock)}
}

// Lock blocks until the caller holds the lock for stockID and returns the
// function that releases it. Entries are removed once no goroutine holds or
// waits for them.
func (p *PositionLocks) Lock(stockID string) (unlock func()) {
	p.mu.Lock()
	l, ok := p.locks[stockID]
	if !ok {
		l = &positionLock{}
		p.locks[stockID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, stockID)
		}
		p.mu.Unlock()
	}
}

func (p *PositionLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
