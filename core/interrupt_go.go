//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqLock stands in for the interrupt mask on regular Go, where the tick
// source is a goroutine rather than a hardware interrupt.
var irqLock sync.Mutex

// disableInterrupts blocks the tick goroutine until restoreInterrupts
func disableInterrupts() State {
	irqLock.Lock()
	return 0
}

// restoreInterrupts lets the tick goroutine run again
func restoreInterrupts(state State) {
	irqLock.Unlock()
}

// RunInterrupt runs fn as if it were an interrupt handler: it never overlaps
// a critical section taken by the polling loop.
func RunInterrupt(fn func()) {
	irqLock.Lock()
	defer irqLock.Unlock()
	fn()
}
