package orchestrator

import "sync/atomic"

// exclusivityLock admits one allocation run at a time. It starts free and
// every run releases it on the way out, whatever the outcome.
type exclusivityLock struct {
	held atomic.Bool
}

// tryAcquire takes the lock without waiting. Check and set are one atomic
// step, so two gestures can never both get through.
func (l *exclusivityLock) tryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

func (l *exclusivityLock) release() {
	l.held.Store(false)
}

func (l *exclusivityLock) isHeld() bool {
	return l.held.Load()
}
