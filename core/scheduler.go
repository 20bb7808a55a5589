package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by WakeTime.
// It belongs to the polling loop; handlers run there, never in interrupt
// context, so they may pause and resume the PWM engine.
type Scheduler struct {
	timerList *Timer
}

// ScheduleTimer adds a timer to the schedule, moving it if already queued
func (s *Scheduler) ScheduleTimer(t *Timer) {
	s.CancelTimer(t)
	s.insertTimer(t)
}

// CancelTimer removes a timer; it reports whether the timer was queued
func (s *Scheduler) CancelTimer(t *Timer) bool {
	for p := &s.timerList; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// Pending reports whether a timer is queued
func (s *Scheduler) Pending(t *Timer) bool {
	for cur := s.timerList; cur != nil; cur = cur.Next {
		if cur == t {
			return true
		}
	}
	return false
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timerList == nil || timeBefore(t.WakeTime, s.timerList.WakeTime) {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && !timeBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// TimerDispatch runs every timer due at now and returns how many fired
func (s *Scheduler) TimerDispatch(now uint32) int {
	fired := 0
	for s.timerList != nil && !timeBefore(now, s.timerList.WakeTime) {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references

		fired++
		if timer.Handler(timer) == SF_RESCHEDULE {
			s.insertTimer(timer)
		}
	}
	return fired
}
