//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"swdimmer/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

var (
	// pwmTicker is the only part of the engine the interrupt can reach
	pwmTicker  core.PWMTicker
	tickPeriod uint32

	// missedTicks counts alarms that were already in the past when re-armed
	missedTicks uint32
)

// GetHardwareTime reads the RP2040 hardware timer
// Returns the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime updates the core loop clock with hardware time
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}

// StartTickTimer runs ticker.Step every periodUs microseconds from the
// TIMER alarm 3 interrupt. Alarms 0-2 are left to the TinyGo runtime.
func StartTickTimer(ticker core.PWMTicker, periodUs uint32) {
	pwmTicker = ticker
	tickPeriod = periodUs

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_3, timerTickHandler)
	intr.SetPriority(0x00) // highest: PWM timing matters more than the loop

	rp.TIMER.INTE.SetBits(rp.TIMER_INTE_ALARM_3)
	rp.TIMER.ALARM3.Set(GetHardwareTime() + periodUs)
	intr.Enable()
}

// timerTickHandler acknowledges the alarm, re-arms it one period later and
// advances the PWM engine
func timerTickHandler(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(rp.TIMER_INTR_ALARM_3)

	next := rp.TIMER.ALARM3.Get() + tickPeriod
	now := GetHardwareTime()
	if int32(next-now) <= 0 {
		// Step overran the period; skip ahead rather than wait for wraparound
		missedTicks++
		next = now + tickPeriod
	}
	rp.TIMER.ALARM3.Set(next)

	core.RunInterrupt(pwmTicker.Step)
}
