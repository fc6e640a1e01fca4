package reorder

import "time"

// Timer is a cancellable deferred call.
type Timer interface {
	// Stop prevents the call from running. It returns false if the call
	// already ran or was stopped.
	Stop() bool
}

// Scheduler defers calls. Engines take one so timing can be driven by tests.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClockScheduler returns a Scheduler backed by time.AfterFunc.
func ClockScheduler() Scheduler {
	return clockScheduler{}
}
