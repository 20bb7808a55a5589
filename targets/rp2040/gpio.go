//go:build rp2040

package main

import (
	"machine"

	"swdimmer/core"
)

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

// ConfigureInput configures a pin as a floating digital input
func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInput)
}

// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *RPGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	// RP2040 has GPIO0-GPIO29
	if pin > 29 {
		return errInvalidPin
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: mode})

	// Track configured pin
	d.configuredPins[pin] = machinePin

	return nil
}

// SetHigh drives a pin high through the SIO set register.
// Called from the tick interrupt, so no map lookups or allocation.
func (d *RPGPIODriver) SetHigh(pin core.GPIOPin) {
	machine.Pin(pin).High()
}

// SetLow drives a pin low through the SIO clear register
func (d *RPGPIODriver) SetLow(pin core.GPIOPin) {
	machine.Pin(pin).Low()
}

// ReadPin reads the current pin state
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		// Pin not configured
		return false
	}
	return machinePin.Get()
}
