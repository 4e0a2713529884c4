package importer

import "sync/atomic"

// ImportLock provides non-blocking lock semantics using atomic operations.
// Imports and deletes hold it; a second caller fails instead of waiting.
type ImportLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *ImportLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *ImportLock) Release() {
	l.state.Store(0)
}

// Held reports whether the lock is currently taken
func (l *ImportLock) Held() bool {
	return l.state.Load() == 1
}
