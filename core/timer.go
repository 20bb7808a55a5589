package core

import (
	"sync/atomic"
	"time"
)

// TimerFreq is the rate of the polling loop clock: one tick per microsecond
const TimerFreq = 1000000

// systemTicks is written by the target from its hardware microsecond counter
var systemTicks uint32

// GetTime returns the current loop clock in ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the loop clock (for testing/hardware integration)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerFromDuration converts a duration to timer ticks
func TimerFromDuration(d time.Duration) uint32 {
	return TimerFromUS(uint32(d / time.Microsecond))
}

// timeBefore compares two clock values across counter wraparound
func timeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
