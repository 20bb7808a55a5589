//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// RunInterrupt runs fn from an interrupt handler. The polling loop cannot be
// executing a critical section while the handler runs, so no locking is needed.
func RunInterrupt(fn func()) {
	fn()
}
