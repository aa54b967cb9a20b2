package event

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is the default critical section around the queue indices. It never
// parks the goroutine and is held for a few instructions at a time.
type SpinLock struct {
	held atomic.Bool
}

func (l *SpinLock) Lock() {
	for !l.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (l *SpinLock) Unlock() {
	l.held.Store(false)
}
