package application

import "sync"

// roomLocker serializes booking commits per room so the availability check
// and the write behave as one step even when the store cannot guarantee it.
type roomLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for one room and returns its release function.
func (l *roomLocker) lock(roomID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	roomMu, ok := l.locks[roomID]
	if !ok {
		roomMu = &sync.Mutex{}
		l.locks[roomID] = roomMu
	}
	l.mu.Unlock()

	roomMu.Lock()
	return roomMu.Unlock
}
