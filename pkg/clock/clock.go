// Package clock abstracts timer scheduling so notification, debounce and
// submission flows can be driven deterministically in tests.
package clock

import "time"

// Timer is the handle returned by AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing. It reports false when the timer
	// already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks and reports the current time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// OrReal returns c, or the real clock when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real()
	}
	return c
}
