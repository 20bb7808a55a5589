//go:build linux && !tinygo

package main

import (
	"context"
	"time"

	"swdimmer/core"
)

// runTicker steps the PWM engine every period until ctx is done.
// It plays the part of the timer interrupt: each step runs through
// core.RunInterrupt and so never overlaps a loop-side critical section.
func runTicker(ctx context.Context, ticker core.PWMTicker, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			core.RunInterrupt(ticker.Step)
		}
	}
}

// epoch anchors the loop clock
var epoch = time.Now()

// updateSystemTime feeds the microsecond loop clock from the monotonic clock
func updateSystemTime() {
	core.SetTime(uint32(time.Since(epoch) / time.Microsecond))
}
