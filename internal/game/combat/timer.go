package combat

import (
	"sync"
	"time"
)

// TurnTimer runs a callback once after a delay unless stopped first.
// It schedules automatic enemy turns. It is safe for concurrent use.
type TurnTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewTurnTimer creates a stopped TurnTimer. Call Schedule to arm it.
func NewTurnTimer() *TurnTimer {
	return &TurnTimer{stopped: true}
}

// Schedule cancels any pending callback and arms a new one.
// onFire is called in a separate goroutine.
//
// Precondition: delay > 0; onFire must not be nil.
// Postcondition: onFire will be called after delay unless Stop or another Schedule comes first.
func (tt *TurnTimer) Schedule(delay time.Duration, onFire func()) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if tt.timer != nil {
		tt.timer.Stop()
	}
	tt.stopped = false
	var self *time.Timer
	self = time.AfterFunc(delay, func() {
		tt.mu.Lock()
		live := !tt.stopped && tt.timer == self
		tt.mu.Unlock()
		if live {
			onFire()
		}
	})
	tt.timer = self
}

// Stop prevents any pending callback from firing. Safe to call multiple times.
//
// Postcondition: no callback scheduled before Stop will run after Stop returns,
// unless it had already started.
func (tt *TurnTimer) Stop() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.stopped = true
	if tt.timer != nil {
		tt.timer.Stop()
	}
}
