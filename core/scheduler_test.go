package core

import "testing"

func TestSchedulerOrderAndDispatch(t *testing.T) {
	var s Scheduler
	var order []int

	mk := func(id int, wake uint32) *Timer {
		return &Timer{
			WakeTime: wake,
			Handler: func(*Timer) uint8 {
				order = append(order, id)
				return SF_DONE
			},
		}
	}

	s.ScheduleTimer(mk(3, 300))
	s.ScheduleTimer(mk(1, 100))
	s.ScheduleTimer(mk(2, 200))

	if n := s.TimerDispatch(50); n != 0 {
		t.Errorf("expected no timers due at 50, %d fired", n)
	}
	if n := s.TimerDispatch(200); n != 2 {
		t.Errorf("expected 2 timers due at 200, %d fired", n)
	}
	if n := s.TimerDispatch(1000); n != 1 {
		t.Errorf("expected 1 timer due at 1000, %d fired", n)
	}

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected order %v, got %v", want, order)
			break
		}
	}
}

func TestSchedulerReschedule(t *testing.T) {
	var s Scheduler
	count := 0
	timer := &Timer{WakeTime: 10}
	timer.Handler = func(t *Timer) uint8 {
		count++
		if count < 3 {
			t.WakeTime += 10
			return SF_RESCHEDULE
		}
		return SF_DONE
	}
	s.ScheduleTimer(timer)

	for now := uint32(0); now <= 100; now += 5 {
		s.TimerDispatch(now)
	}
	if count != 3 {
		t.Errorf("expected handler to run 3 times, ran %d", count)
	}
	if s.Pending(timer) {
		t.Error("timer should not be pending after SF_DONE")
	}
}

func TestSchedulerWraparound(t *testing.T) {
	var s Scheduler
	fired := false
	s.ScheduleTimer(&Timer{
		WakeTime: 5, // after the clock wraps
		Handler:  func(*Timer) uint8 { fired = true; return SF_DONE },
	})

	s.TimerDispatch(0xFFFFFFF0)
	if fired {
		t.Fatal("timer fired before the clock wrapped")
	}
	s.TimerDispatch(6)
	if !fired {
		t.Error("timer did not fire after the clock wrapped")
	}
}

func TestSchedulerCancelAndMove(t *testing.T) {
	var s Scheduler
	fired := 0
	timer := &Timer{WakeTime: 100, Handler: func(*Timer) uint8 { fired++; return SF_DONE }}

	s.ScheduleTimer(timer)
	timer.WakeTime = 500
	s.ScheduleTimer(timer) // moves rather than duplicates

	s.TimerDispatch(200)
	if fired != 0 {
		t.Errorf("moved timer fired early")
	}
	if !s.CancelTimer(timer) {
		t.Error("expected CancelTimer to find the queued timer")
	}
	if s.CancelTimer(timer) {
		t.Error("timer cancelled twice")
	}
	s.TimerDispatch(1000)
	if fired != 0 {
		t.Errorf("cancelled timer fired")
	}
}
