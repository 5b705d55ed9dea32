package scheduler

import "sync"

// Subscription is a registered listener for fired events.
//
// If the holder cannot keep up, the scheduler drops the subscription and
// closes its channel; the holder must subscribe again.
type Subscription struct {
	id        uint64
	c         chan Event
	scheduler *Scheduler
	done      chan struct{}
	once      sync.Once
}

// C returns the event channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.c
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.scheduler.mu.Lock()
		s.scheduler.unsubscribeLocked(s.id)
		s.scheduler.mu.Unlock()

		close(s.done)
	})
}
