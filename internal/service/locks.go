package service

import "sync"

// recordLocks hands out one mutex per record id, so deliveries for
// distinct records run in parallel while two attempts on the same
// record serialize. Entries are dropped once no caller holds or waits
// on them.
type recordLocks struct {
	mu sync.Mutex
	m  map[int64]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

func newRecordLocks() *recordLocks {
	return &recordLocks{m: make(map[int64]*recordLock)}
}

func (l *recordLocks) acquire(id int64) {
	l.mu.Lock()
	e, ok := l.m[id]
	if !ok {
		e = &recordLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *recordLocks) release(id int64) {
	l.mu.Lock()
	e := l.m[id]
	e.refs--
	if e.refs == 0 {
		delete(l.m, id)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
