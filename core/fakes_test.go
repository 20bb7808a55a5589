package core

import "fmt"

// fakePort is a test implementation of GPIODriver
type fakePort struct {
	outputs map[GPIOPin]bool // configured outputs
	inputs  map[GPIOPin]bool // configured inputs
	pullups map[GPIOPin]bool
	levels  map[GPIOPin]bool // driven or externally applied level
	writes  int
	failOn  GPIOPin
	fail    bool
}

func newFakePort() *fakePort {
	return &fakePort{
		outputs: make(map[GPIOPin]bool),
		inputs:  make(map[GPIOPin]bool),
		pullups: make(map[GPIOPin]bool),
		levels:  make(map[GPIOPin]bool),
	}
}

func (f *fakePort) ConfigureOutput(pin GPIOPin) error {
	if f.fail && pin == f.failOn {
		return fmt.Errorf("pin %d unavailable", pin)
	}
	f.outputs[pin] = true
	return nil
}

func (f *fakePort) ConfigureInput(pin GPIOPin) error {
	f.inputs[pin] = true
	return nil
}

func (f *fakePort) ConfigureInputPullUp(pin GPIOPin) error {
	f.inputs[pin] = true
	f.pullups[pin] = true
	f.levels[pin] = true
	return nil
}

func (f *fakePort) SetHigh(pin GPIOPin) {
	f.levels[pin] = true
	f.writes++
}

func (f *fakePort) SetLow(pin GPIOPin) {
	f.levels[pin] = false
	f.writes++
}

func (f *fakePort) ReadPin(pin GPIOPin) bool {
	return f.levels[pin]
}

// snapshot copies the current pin levels
func (f *fakePort) snapshot() map[GPIOPin]bool {
	out := make(map[GPIOPin]bool, len(f.levels))
	for k, v := range f.levels {
		out[k] = v
	}
	return out
}
