package engine

import (
	"strconv"
	"sync"
	"time"
)

// Scheduler arms and cancels the wall-clock timers that force phase
// transitions independently of player activity. Timers are keyed by
// (round, phase); the core keeps only the cancellation handle, never
// the callback's captured state. Cancelling a timer that already fired
// is a no-op, and a fired callback runs after its handle is dropped, so
// stale fires fall through to the phase checks in the engines.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

func timerKey(roundID int64, phase string) string {
	return strconv.FormatInt(roundID, 10) + ":" + phase
}

// Arm schedules fn to run after d. Re-arming the same (round, phase)
// replaces the previous timer.
func (s *Scheduler) Arm(roundID int64, phase string, d time.Duration, fn func()) {
	key := timerKey(roundID, phase)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops the (round, phase) timer if it is still pending.
func (s *Scheduler) Cancel(roundID int64, phase string) bool {
	key := timerKey(roundID, phase)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// CancelRound stops every pending timer belonging to the round.
func (s *Scheduler) CancelRound(roundID int64) {
	prefix := strconv.FormatInt(roundID, 10) + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
