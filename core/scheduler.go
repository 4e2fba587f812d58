package core

// Timer represents a scheduled event on a Scheduler timeline
type Timer struct {
	WakeTime uint64
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler orders timers by WakeTime and runs those that are due. Timers
// with equal WakeTime run in the order they were scheduled. It is not safe
// for concurrent use; it models a single interrupt controller.
type Scheduler struct {
	list *Timer
	now  uint64
}

// NewScheduler returns an empty scheduler at time zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the time of the last dispatch
func (s *Scheduler) Now() uint64 {
	return s.now
}

// Schedule adds t to the schedule
func (s *Scheduler) Schedule(t *Timer) {
	s.insert(t)
}

// Cancel removes t if it is scheduled and reports whether it was
func (s *Scheduler) Cancel(t *Timer) bool {
	if s.list == t {
		s.list = t.Next
		t.Next = nil
		return true
	}
	for cur := s.list; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// Scheduled reports whether t is waiting to fire
func (s *Scheduler) Scheduled(t *Timer) bool {
	for cur := s.list; cur != nil; cur = cur.Next {
		if cur == t {
			return true
		}
	}
	return false
}

// NextWake returns the earliest pending WakeTime
func (s *Scheduler) NextWake() (uint64, bool) {
	if s.list == nil {
		return 0, false
	}
	return s.list.WakeTime, true
}

// insert inserts a timer in sorted order by WakeTime
func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || t.WakeTime < s.list.WakeTime {
		t.Next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Dispatch advances the clock to now and runs every timer due by then
func (s *Scheduler) Dispatch(now uint64) {
	s.now = now
	for s.list != nil && s.list.WakeTime <= now {
		timer := s.list
		s.list = timer.Next
		timer.Next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			s.insert(timer)
		}
	}
}
