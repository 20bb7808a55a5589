//go:build linux && !tinygo

package main

import (
	"strconv"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"swdimmer/core"
)

// PeriphGPIODriver implements the GPIODriver interface on Linux GPIO lines
// through periph. Pin numbers map to the kernel names "GPIO<n>".
type PeriphGPIODriver struct {
	pins map[core.GPIOPin]gpio.PinIO
}

// NewPeriphGPIODriver creates a new driver; host.Init must have run
func NewPeriphGPIODriver() *PeriphGPIODriver {
	return &PeriphGPIODriver{
		pins: make(map[core.GPIOPin]gpio.PinIO),
	}
}

func (d *PeriphGPIODriver) lookup(pin core.GPIOPin) (gpio.PinIO, error) {
	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	p := gpioreg.ByName("GPIO" + strconv.Itoa(int(pin)))
	if p == nil {
		return nil, errors.Errorf("GPIO%d not found", pin)
	}
	d.pins[pin] = p
	return p, nil
}

// ConfigureOutput configures a pin as a digital output, driven low
func (d *PeriphGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	return p.Out(gpio.Low)
}

// ConfigureInput configures a pin as a digital input without pull resistors
func (d *PeriphGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	return p.In(gpio.Float, gpio.NoEdge)
}

// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
func (d *PeriphGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	return p.In(gpio.PullUp, gpio.NoEdge)
}

// SetHigh drives a configured output high
func (d *PeriphGPIODriver) SetHigh(pin core.GPIOPin) {
	if p, ok := d.pins[pin]; ok {
		_ = p.Out(gpio.High)
	}
}

// SetLow drives a configured output low
func (d *PeriphGPIODriver) SetLow(pin core.GPIOPin) {
	if p, ok := d.pins[pin]; ok {
		_ = p.Out(gpio.Low)
	}
}

// ReadPin reads a configured input
func (d *PeriphGPIODriver) ReadPin(pin core.GPIOPin) bool {
	p, ok := d.pins[pin]
	if !ok {
		return false
	}
	return p.Read() == gpio.High
}
